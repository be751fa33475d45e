package models

// ConfirmationSource identifies who asserted a classification.
type ConfirmationSource string

const (
	// SourceAuthority marks confirmations ingested from the platform's
	// own catalog data.
	SourceAuthority ConfirmationSource = "NTD"

	// SourceStaff marks confirmations added manually by site staff.
	SourceStaff ConfirmationSource = "STF"

	// SourceVote marks confirmations derived from community votes.
	SourceVote ConfirmationSource = "VOT"
)

// Privileged reports whether the source may be written directly by
// staff endpoints. Vote confirmations belong to the engine alone.
func (s ConfirmationSource) Privileged() bool {
	return s == SourceAuthority || s == SourceStaff
}
