package model

// ApplicationStatus represents the pipeline stage of a job application.
type ApplicationStatus string

const (
	ApplicationStatusWishlist     ApplicationStatus = "wishlist"
	ApplicationStatusApplied      ApplicationStatus = "applied"
	ApplicationStatusInterviewing ApplicationStatus = "interviewing"
	ApplicationStatusOffer        ApplicationStatus = "offer"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn    ApplicationStatus = "withdrawn"
)

// WorkMode tags where a role is performed.
type WorkMode string

const (
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
	WorkModeOnsite WorkMode = "onsite"
)

// DocumentKind classifies an uploaded document.
type DocumentKind string

const (
	DocumentKindResume      DocumentKind = "resume"
	DocumentKindCoverLetter DocumentKind = "cover_letter"
	DocumentKindPortfolio   DocumentKind = "portfolio"
	DocumentKindOther       DocumentKind = "other"
)

// ToolType names an external tool the launcher can open.
type ToolType string

const (
	ToolResumeTailor  ToolType = "resume-tailor"
	ToolInterviewPrep ToolType = "interview-prep"
	ToolCoverLetter   ToolType = "cover-letter"
)
