package domain

type NotifyMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type WelcomeNotifyData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ViolationReportNotifyData struct {
	GroupID string `json:"groupID"`
	Report  string `json:"report"`
}

type ShiftsPublishedNotifyData struct {
	GroupID   string `json:"groupID"`
	FullName  string `json:"fullName"`
	Published int    `json:"published"`
}
