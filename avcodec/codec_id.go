//go:build !ios && !android && (amd64 || arm64)

package avcodec

import "strconv"

// CodecID represents FFmpeg codec identifiers (enum AVCodecID).
type CodecID int32

// Video codec IDs seen in the containers ffscrub plays.
const (
	CodecIDNone       CodecID = 0
	CodecIDMPEG1VIDEO CodecID = 1
	CodecIDMPEG2VIDEO CodecID = 2
	CodecIDMJPEG      CodecID = 7
	CodecIDMPEG4      CodecID = 12
	CodecIDRAWVIDEO   CodecID = 13
	CodecIDH264       CodecID = 27
	CodecIDPNG        CodecID = 61
	CodecIDVP8        CodecID = 139
	CodecIDVP9        CodecID = 167
	CodecIDHEVC       CodecID = 173
	CodecIDAV1        CodecID = 226
)

// String returns FFmpeg's name for the codec when the libraries are
// loaded, and a numeric placeholder otherwise.
func (id CodecID) String() string {
	if name := CodecName(id); name != "" {
		return name
	}
	switch id {
	case CodecIDNone:
		return "none"
	case CodecIDH264:
		return "h264"
	case CodecIDHEVC:
		return "hevc"
	default:
		return "codec(" + strconv.Itoa(int(id)) + ")"
	}
}
