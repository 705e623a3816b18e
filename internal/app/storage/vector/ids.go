package vector

import (
	"fmt"

	"github.com/google/uuid"
)

// IDScheme selects how fragment ids are generated.
type IDScheme string

const (
	// IDVideoUUID prefixes a random UUID with the video id: <video_id>_<uuid>.
	IDVideoUUID IDScheme = "video_uuid"
	// IDUUID is a bare random UUID.
	IDUUID IDScheme = "uuid"
)

// ParseIDScheme accepts the configured scheme name; empty selects IDVideoUUID.
func ParseIDScheme(s string) (IDScheme, error) {
	switch IDScheme(s) {
	case "", IDVideoUUID:
		return IDVideoUUID, nil
	case IDUUID:
		return IDUUID, nil
	}
	return "", fmt.Errorf("unknown id scheme %q", s)
}

// NewID generates a fragment id for videoID.
func (s IDScheme) NewID(videoID string) string {
	id := uuid.NewString()
	if s == IDUUID || videoID == "" {
		return id
	}
	return videoID + "_" + id
}
