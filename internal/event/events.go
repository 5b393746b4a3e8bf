package event

type Type string

const (
	TxSubmittedEvent   Type = "TxSubmittedEvent"
	TxConfirmedEvent   Type = "TxConfirmedEvent"
	TxFailedEvent      Type = "TxFailedEvent"
	ViewRefreshedEvent Type = "ViewRefreshedEvent"
)
