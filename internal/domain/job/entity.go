package job

import (
	"time"

	"github.com/google/uuid"
)

// Source identifies the external job board a posting was scraped from.
type Source string

const (
	SourceLinkedIn          Source = "LINKEDIN"
	SourceMyJobMag          Source = "MYJOBMAG"
	SourceCorporateStaffing Source = "CORPORATESTAFFING"
	SourceReliefWeb         Source = "RELIEFWEB"
)

// Posting is a scraped external job listing. The canonical URL is globally
// unique; a posting is never mutated after creation.
type Posting struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Source      Source    `json:"source"`
	DatePosted  time.Time `json:"date_posted"`
	ScrapedAt   time.Time `json:"scraped_at"`
}
