package notification

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/certwatch/certwatch-api/internal/expiry"
	"github.com/certwatch/certwatch-api/internal/models"
)

// Message is a rendered notification, ready for the mail gateway.
type Message struct {
	Subject  string
	HTMLBody string
}

// Composer renders the subject and HTML body for a certification at a given
// milestone. Pure: no I/O, deterministic for the same inputs. All stored
// free text passes through html/template escaping.
type Composer struct {
	publicBaseURL string
}

func NewComposer(publicBaseURL string) *Composer {
	return &Composer{publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

var bodyTemplate = template.Must(template.New("notification").Parse(`<html>
<body>
<h2>{{.Heading}}</h2>
<table border="1" cellpadding="6" cellspacing="0">
<tr><td>Plant</td><td>{{.Plant}}</td></tr>
<tr><td>Group No.</td><td>{{.GroupNumber}}</td></tr>
<tr><td>Scheme</td><td>{{.Scheme}}</td></tr>
<tr><td>Registration No.</td><td>{{.RegistrationNumber}}</td></tr>
<tr><td>Status</td><td>{{.Status}}</td></tr>
<tr><td>Valid From</td><td>{{.ValidFrom}}</td></tr>
<tr><td>Valid To</td><td>{{.ValidTo}}</td></tr>
<tr><td>Renewal Status</td><td>{{.RenewalStatus}}</td></tr>
<tr><td>Alarm Alert</td><td>{{.AlarmNote}}</td></tr>
<tr><td>Address</td><td>{{.Address}}</td></tr>
<tr><td>Models</td><td>{{.ModelList}}</td></tr>
<tr><td>Standard</td><td>{{.StandardRef}}</td></tr>
<tr><td>Action Notes</td><td>{{.ActionNote}}</td></tr>
</table>
{{if .AttachmentURL}}<p><a href="{{.AttachmentURL}}">Download certificate file: {{.AttachmentName}}</a></p>
{{else if .AttachmentName}}<p>A file ({{.AttachmentName}}) is attached to this record in the register.</p>
{{end}}</body>
</html>
`))

type bodyView struct {
	Heading            string
	Plant              string
	GroupNumber        string
	Scheme             string
	RegistrationNumber string
	Status             string
	ValidFrom          string
	ValidTo            string
	RenewalStatus      string
	AlarmNote          string
	Address            string
	ModelList          string
	StandardRef        string
	ActionNote         string
	AttachmentName     string
	AttachmentURL      template.URL
}

var statusLabels = map[models.CertStatus]string{
	models.StatusActive:       "Active",
	models.StatusUnderProcess: "Under Process",
	models.StatusExpired:      "Expired",
	models.StatusPending:      "Pending",
}

func (c *Composer) Compose(cert models.SchemeCertification, bucket expiry.Bucket) Message {
	plant := orDash(cert.PlantName)
	scheme := string(cert.Scheme)

	var subject, heading string
	if bucket == expiry.BucketOverdue {
		subject = fmt.Sprintf("[CertWatch] OVERDUE: %s registration for %s has expired", scheme, plant)
		heading = fmt.Sprintf("%s registration for %s is overdue", scheme, plant)
	} else {
		subject = fmt.Sprintf("[CertWatch] %s %s registration: %s", plant, scheme, bucket.Label())
		heading = fmt.Sprintf("%s registration for %s: %s", scheme, plant, bucket.Label())
	}

	// The overdue milestone always displays Expired, whatever the stored
	// status says. Display only; the row is never mutated.
	status := statusLabels[cert.Record.Status]
	if bucket == expiry.BucketOverdue {
		status = statusLabels[models.StatusExpired]
	}

	view := bodyView{
		Heading:            heading,
		Plant:              plant,
		GroupNumber:        orDash(cert.GroupNumber),
		Scheme:             scheme,
		RegistrationNumber: orDash(cert.Record.RegistrationNumber),
		Status:             orDash(status),
		ValidFrom:          formatDate(cert.Record.ValidFrom),
		ValidTo:            formatDate(cert.Record.ValidTo),
		RenewalStatus:      orDash(cert.RenewalStatus),
		AlarmNote:          orDash(cert.AlarmNote),
		Address:            orDash(cert.Address),
		ModelList:          orDash(cert.ModelList),
		StandardRef:        orDash(cert.StandardRef),
		ActionNote:         orDash(cert.ActionNote),
	}
	if cert.AttachmentName != nil && *cert.AttachmentName != "" {
		view.AttachmentName = *cert.AttachmentName
		if c.publicBaseURL != "" {
			view.AttachmentURL = template.URL(fmt.Sprintf("%s/api/certifications/%s/attachment", c.publicBaseURL, cert.CertificationID))
		}
	}

	var body strings.Builder
	if err := bodyTemplate.Execute(&body, view); err != nil {
		// The template is static and the view is plain strings; execution
		// cannot fail at runtime. Keep the message deliverable regardless.
		body.Reset()
		body.WriteString("<html><body><p>" + template.HTMLEscapeString(heading) + "</p></body></html>")
	}

	return Message{Subject: subject, HTMLBody: body.String()}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}
