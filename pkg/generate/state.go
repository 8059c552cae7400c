package generate

///////////////////////////////////////////////////////////////////////////////
// TYPES

// State is a step of a generation run. A run only ever moves forward:
//
//	Start → Requesting → {Failed | Parsing}
//	Parsing → {ParseFailed | NoImageFound | Downloading}
//	Downloading → {DownloadFailed | Saved}
type State int

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	StateStart State = iota
	StateRequesting
	StateFailed
	StateParsing
	StateParseFailed
	StateNoImageFound
	StateDownloading
	StateDownloadFailed
	StateSaved
)

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateRequesting:
		return "requesting"
	case StateFailed:
		return "failed"
	case StateParsing:
		return "parsing"
	case StateParseFailed:
		return "parse_failed"
	case StateNoImageFound:
		return "no_image_found"
	case StateDownloading:
		return "downloading"
	case StateDownloadFailed:
		return "download_failed"
	case StateSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Terminal returns true when no further step follows
func (s State) Terminal() bool {
	switch s {
	case StateFailed, StateParseFailed, StateNoImageFound, StateDownloadFailed, StateSaved:
		return true
	default:
		return false
	}
}
