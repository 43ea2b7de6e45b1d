package ingest

// Progress events form an ordered stream per sync run. Every run ends with
// exactly one terminal event: done or error. Consumers JSON-encode events
// as-is; the Type discriminator is embedded in each struct.

type EventType string

const (
	EventStart       EventType = "start"
	EventCommitsPage EventType = "commits_page"
	EventCommitsDone EventType = "commits_done"
	EventFetching    EventType = "fetching"
	EventIncident    EventType = "incident"
	EventError       EventType = "error"
	EventDone        EventType = "done"
)

type Event interface {
	Kind() EventType
}

// StartEvent opens the stream. Since is the computed lower bound of the
// fetch window (RFC3339), empty on a source's first run.
type StartEvent struct {
	Type  EventType `json:"type"`
	Since string    `json:"since,omitempty"`
}

// CommitsPageEvent is emitted once per listing page with the running total.
type CommitsPageEvent struct {
	Type  EventType `json:"type"`
	Page  int       `json:"page"`
	Count int       `json:"count"`
}

// CommitsDoneEvent records the full commit count and the sampling decision.
type CommitsDoneEvent struct {
	Type    EventType `json:"type"`
	Total   int       `json:"total"`
	Sampled int       `json:"sampled"`
	Step    int       `json:"step"`
}

// FetchingEvent is emitted once per snapshot batch, not per item.
type FetchingEvent struct {
	Type  EventType `json:"type"`
	Done  int       `json:"done"`
	Total int       `json:"total"`
}

// IncidentEvent is emitted for each newly queued candidate.
type IncidentEvent struct {
	Type     EventType `json:"type"`
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Severity *string   `json:"severity"`
}

type ErrorEvent struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
}

type DoneEvent struct {
	Type    EventType `json:"type"`
	Created int       `json:"created"`
}

func (StartEvent) Kind() EventType       { return EventStart }
func (CommitsPageEvent) Kind() EventType { return EventCommitsPage }
func (CommitsDoneEvent) Kind() EventType { return EventCommitsDone }
func (FetchingEvent) Kind() EventType    { return EventFetching }
func (IncidentEvent) Kind() EventType    { return EventIncident }
func (ErrorEvent) Kind() EventType       { return EventError }
func (DoneEvent) Kind() EventType        { return EventDone }

func newStartEvent(since string) StartEvent {
	return StartEvent{Type: EventStart, Since: since}
}

func newCommitsPageEvent(page, count int) CommitsPageEvent {
	return CommitsPageEvent{Type: EventCommitsPage, Page: page, Count: count}
}

func newCommitsDoneEvent(total, sampled, step int) CommitsDoneEvent {
	return CommitsDoneEvent{Type: EventCommitsDone, Total: total, Sampled: sampled, Step: step}
}

func newFetchingEvent(done, total int) FetchingEvent {
	return FetchingEvent{Type: EventFetching, Done: done, Total: total}
}

func newIncidentEvent(id, title string, severity *string) IncidentEvent {
	return IncidentEvent{Type: EventIncident, ID: id, Title: title, Severity: severity}
}

func newErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message}
}

func newDoneEvent(created int) DoneEvent {
	return DoneEvent{Type: EventDone, Created: created}
}
