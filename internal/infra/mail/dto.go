package mail

// HotLeadEmailData alimenta la plantilla de la alerta de lead caliente.
type HotLeadEmailData struct {
	Name       string
	Phone      string
	Experience string
	Capital    string
	Time       string
	Goal       string
	Offer      string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string // inbox de ventas
}
