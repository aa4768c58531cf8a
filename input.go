package cleanscore

import (
	"net/url"
	"strings"
)

// NoImageSentinel is the reserved image argument meaning "no image".
const NoImageSentinel = "none"

// RefKind tags an ImageRef.
type RefKind int

const (
	RefAbsent RefKind = iota
	RefLocal
	RefRemote
)

func (k RefKind) String() string {
	switch k {
	case RefLocal:
		return "local"
	case RefRemote:
		return "remote"
	default:
		return "absent"
	}
}

// ImageRef is a reference to the report photo: a local path, a remote URL or nothing.
type ImageRef struct {
	Kind  RefKind
	Value string // path for RefLocal, URL for RefRemote
}

func (r ImageRef) String() string {
	if r.Kind == RefAbsent {
		return NoImageSentinel
	}
	return r.Value
}

// ParseImageRef classifies an image argument. Empty input and the "none"
// sentinel (any case) are absent; http(s) URLs with a host are remote;
// file:// URLs and everything else are local paths.
func ParseImageRef(s string) ImageRef {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, NoImageSentinel) {
		return ImageRef{Kind: RefAbsent}
	}

	if u, err := url.Parse(s); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			if u.Host != "" {
				return ImageRef{Kind: RefRemote, Value: s}
			}
		case "file":
			if u.Path != "" {
				return ImageRef{Kind: RefLocal, Value: u.Path}
			}
		}
	}
	return ImageRef{Kind: RefLocal, Value: s}
}

// ScoreInput is one report: an optional image and a possibly empty description.
type ScoreInput struct {
	Image       ImageRef
	Description string
}

// HasDescription reports whether the description carries any non-space text.
func (in ScoreInput) HasDescription() bool {
	return strings.TrimSpace(in.Description) != ""
}

// ParseArgs builds a ScoreInput from the two positional inputs
// (image reference, description). Extra inputs are ignored.
func ParseArgs(args []string) (ScoreInput, error) {
	if len(args) < 2 { //nolint:mnd // image + description
		return ScoreInput{}, &ArgumentError{Message: MsgInsufficientArguments}
	}
	return ScoreInput{
		Image:       ParseImageRef(args[0]),
		Description: args[1],
	}, nil
}
