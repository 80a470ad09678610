package session

import (
	"fmt"
	"time"

	"github.com/skillsenselab/callscribe/util"
)

// Entry is one saved, annotated transcription record. Entries are immutable
// after creation and removed only by a bulk clear.
type Entry struct {
	// Filename is the original upload filename.
	Filename string `json:"filename"`
	// Caller is the free-form caller name annotation.
	Caller string `json:"caller"`
	// Address is the free-form address annotation.
	Address string `json:"address"`
	// Phone is the free-form phone annotation.
	Phone string `json:"phone"`
	// Note is the free-form notes annotation.
	Note string `json:"note"`
	// TranscriptionText is the transcript the entry was saved against.
	TranscriptionText string `json:"transcription_text"`
	// CreatedAt is the save time in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// exportTimestamp is the layout used in export filenames.
const exportTimestamp = "20060102T150405Z"

// ExportText renders the entry as a plain-text document with fixed field
// ordering: Caller, Address, Phone, Timestamp, Filename, Notes, Transcription.
func (e Entry) ExportText() string {
	return fmt.Sprintf(
		"Caller: %s\nAddress: %s\nPhone: %s\nTimestamp: %s\nFilename: %s\nNotes: %s\nTranscription:\n%s\n",
		e.Caller,
		e.Address,
		e.Phone,
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.Filename,
		e.Note,
		e.TranscriptionText,
	)
}

// ExportFilename suggests a download filename of the form
// <timestamp>_<caller>.txt. A blank caller falls back to "entry".
func (e Entry) ExportFilename() string {
	caller := util.SanitizeFilename(e.Caller, "entry")
	return fmt.Sprintf("%s_%s.txt", e.CreatedAt.UTC().Format(exportTimestamp), caller)
}
