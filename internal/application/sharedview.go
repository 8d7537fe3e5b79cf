package application

import (
	"time"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/markdown"
)

// dateLayout is the wire format of calendar dates.
const dateLayout = "2006-01-02"

// SharedApplicationView is the JSON representation of a SharedApplication,
// served by the verification endpoint and the FULL_DATA bridge reply.
type SharedApplicationView struct {
	Application ApplicationView `json:"application"`
	Interviews  []InterviewView `json:"interviews"`
	Documents   []DocumentView  `json:"documents"`
	ExpiresAt   string          `json:"expiresAt"`
}

// ApplicationView is the JSON representation of a model.Application.
type ApplicationView struct {
	ID                 string `json:"id"`
	CompanyName        string `json:"companyName"`
	PositionTitle      string `json:"positionTitle"`
	JobDescription     string `json:"jobDescription"`
	JobDescriptionHTML string `json:"jobDescriptionHtml"`
	JobDescriptionText string `json:"jobDescriptionText"`
	Location           string `json:"location,omitempty"`
	SalaryRange        string `json:"salaryRange,omitempty"`
	WorkMode           string `json:"workMode,omitempty"`
	Source             string `json:"source,omitempty"`
	Status             string `json:"status"`
	Notes              string `json:"notes,omitempty"`
	DateApplied        string `json:"dateApplied,omitempty"`
	UpdatedAt          string `json:"updatedAt"`
}

// InterviewView is the JSON representation of a model.Interview.
type InterviewView struct {
	ID          string `json:"id"`
	Round       string `json:"round"`
	Interviewer string `json:"interviewer,omitempty"`
	ScheduledAt string `json:"scheduledAt,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// DocumentView is the JSON representation of a model.Document.
type DocumentView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt"`
}

// DocumentsView is the body of the DOCUMENTS bridge reply.
type DocumentsView struct {
	ApplicationID string         `json:"applicationId"`
	Documents     []DocumentView `json:"documents"`
}

// NewSharedApplicationView converts shared to its wire form. The job
// description is additionally rendered from Markdown to sanitized HTML and
// to plain text.
func NewSharedApplicationView(shared *SharedApplication) SharedApplicationView {
	app := shared.Application

	interviews := make([]InterviewView, 0, len(shared.Interviews))
	for _, iv := range shared.Interviews {
		interviews = append(interviews, InterviewView{
			ID:          iv.ID,
			Round:       iv.Round,
			Interviewer: iv.Interviewer,
			ScheduledAt: formatTimestamp(iv.ScheduledAt),
			Notes:       iv.Notes,
		})
	}

	return SharedApplicationView{
		Application: ApplicationView{
			ID:                 app.ID,
			CompanyName:        app.CompanyName,
			PositionTitle:      app.PositionTitle,
			JobDescription:     app.JobDescription,
			JobDescriptionHTML: markdown.Render(app.JobDescription),
			JobDescriptionText: markdown.PlainText(app.JobDescription),
			Location:           app.Location,
			SalaryRange:        app.SalaryRange,
			WorkMode:           string(app.WorkMode),
			Source:             app.Source,
			Status:             string(app.Status),
			Notes:              app.Notes,
			DateApplied:        formatDate(app.DateApplied),
			UpdatedAt:          formatTimestamp(app.UpdatedAt),
		},
		Interviews: interviews,
		Documents:  NewDocumentViews(shared.Documents),
		ExpiresAt:  formatTimestamp(shared.ExpiresAt),
	}
}

// NewDocumentViews converts docs to their wire form. The result is never nil.
func NewDocumentViews(docs []model.Document) []DocumentView {
	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, DocumentView{
			ID:        d.ID,
			Name:      d.Name,
			Kind:      string(d.Kind),
			URL:       d.URL,
			CreatedAt: formatTimestamp(d.CreatedAt),
		})
	}
	return views
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
