package artifactstore

// Kind identifies one of the fixed artifact categories a stage adapter
// produces. Each kind maps to its own subdirectory under the store root.
type Kind string

const (
	KindScript         Kind = "script"
	KindNarration      Kind = "narration"
	KindStockClip      Kind = "stock_clip"
	KindAssembledVideo Kind = "assembled_video"
	KindCaptionedVideo Kind = "captioned_video"
	KindMetadataJSON   Kind = "metadata_json"
)

var validKinds = map[Kind]struct{}{
	KindScript:         {},
	KindNarration:      {},
	KindStockClip:      {},
	KindAssembledVideo: {},
	KindCaptionedVideo: {},
	KindMetadataJSON:   {},
}

func (k Kind) valid() bool {
	_, ok := validKinds[k]
	return ok
}
