package bigtiff

// Tag value types from the TIFF 6.0 specification plus the three 8-byte
// types added by the BigTIFF extension.
const (
	typeByte      = 1
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeSByte     = 6
	typeUndefined = 7
	typeSShort    = 8
	typeSLong     = 9
	typeSRational = 10
	typeFloat     = 11
	typeDouble    = 12
	typeLong8     = 16
	typeSLong8    = 17
	typeIFD8      = 18
)

type valueKind int

const (
	kindUnsigned valueKind = iota
	kindSigned
	kindBytes
	kindRational
	kindFloat
)

// fieldType describes how one tag value type is stored on disk.
type fieldType struct {
	Name string
	Size uint64
	Kind valueKind
}

var fieldTypes = map[uint16]fieldType{
	typeByte:      {Name: "BYTE", Size: 1, Kind: kindUnsigned},
	typeASCII:     {Name: "ASCII", Size: 1, Kind: kindBytes},
	typeShort:     {Name: "SHORT", Size: 2, Kind: kindUnsigned},
	typeLong:      {Name: "LONG", Size: 4, Kind: kindUnsigned},
	typeRational:  {Name: "RATIONAL", Size: 8, Kind: kindRational},
	typeSByte:     {Name: "SBYTE", Size: 1, Kind: kindSigned},
	typeUndefined: {Name: "UNDEFINED", Size: 1, Kind: kindBytes},
	typeSShort:    {Name: "SSHORT", Size: 2, Kind: kindSigned},
	typeSLong:     {Name: "SLONG", Size: 4, Kind: kindSigned},
	typeSRational: {Name: "SRATIONAL", Size: 8, Kind: kindRational},
	typeFloat:     {Name: "FLOAT", Size: 4, Kind: kindFloat},
	typeDouble:    {Name: "DOUBLE", Size: 8, Kind: kindFloat},
	typeLong8:     {Name: "LONG8", Size: 8, Kind: kindUnsigned},
	typeSLong8:    {Name: "SLONG8", Size: 8, Kind: kindSigned},
	typeIFD8:      {Name: "IFD8", Size: 8, Kind: kindUnsigned},
}

// Tags the reader cares about by number.
const (
	TagNewSubfileType  = 254
	TagImageWidth      = 256
	TagImageLength     = 257
	TagBitsPerSample   = 258
	TagCompression     = 259
	TagPhotometric     = 262
	TagImageDesc       = 270
	TagStripOffsets    = 273
	TagSamplesPerPixel = 277
	TagRowsPerStrip    = 278
	TagStripByteCounts = 279
	TagXResolution     = 282
	TagYResolution     = 283
	TagPlanarConfig    = 284
	TagResolutionUnit  = 296
	TagPredictor       = 317
	TagTileWidth       = 322
	TagTileLength      = 323
	TagTileOffsets     = 324
	TagTileByteCounts  = 325
	TagSampleFormat    = 339
	TagICCProfile      = 34675
)

var tagNames = map[uint16]string{
	TagNewSubfileType:  "NewSubfileType",
	TagImageWidth:      "ImageWidth",
	TagImageLength:     "ImageLength",
	TagBitsPerSample:   "BitsPerSample",
	TagCompression:     "Compression",
	TagPhotometric:     "PhotometricInterpretation",
	266:                "FillOrder",
	TagImageDesc:       "ImageDescription",
	TagStripOffsets:    "StripOffsets",
	274:                "Orientation",
	TagSamplesPerPixel: "SamplesPerPixel",
	TagRowsPerStrip:    "RowsPerStrip",
	TagStripByteCounts: "StripByteCounts",
	TagXResolution:     "XResolution",
	TagYResolution:     "YResolution",
	TagPlanarConfig:    "PlanarConfiguration",
	TagResolutionUnit:  "ResolutionUnit",
	305:                "Software",
	306:                "DateTime",
	TagPredictor:       "Predictor",
	320:                "ColorMap",
	TagTileWidth:       "TileWidth",
	TagTileLength:      "TileLength",
	TagTileOffsets:     "TileOffsets",
	TagTileByteCounts:  "TileByteCounts",
	338:                "ExtraSamples",
	TagSampleFormat:    "SampleFormat",
	TagICCProfile:      "ICCProfile",
	32997:              "ImageDepth",
}

// TagName returns the semantic name for a tag number, or "" when unknown.
func TagName(tag uint16) string {
	return tagNames[tag]
}

// Compression codes observed in Aperio slide containers.
const (
	CompressionNone      = 1
	CompressionLZW       = 5
	CompressionJPEGOld   = 6
	CompressionJPEG      = 7
	CompressionDeflate   = 8
	CompressionJP2KYCbCr = 33003
	CompressionJP2KRGB   = 33005
)

var compressionNames = map[uint64]string{
	CompressionNone:      "Uncompressed",
	CompressionLZW:       "LZW",
	CompressionJPEGOld:   "JPEG (old-style)",
	CompressionJPEG:      "JPEG 7",
	CompressionDeflate:   "Deflate",
	CompressionJP2KYCbCr: "JPEG-2000 YCbCr",
	CompressionJP2KRGB:   "JPEG-2000 RGB",
}

// CompressionName returns the display name of a compression code, or "" when
// the code is unknown.
func CompressionName(code uint64) string {
	return compressionNames[code]
}

// isJPEGFamily reports whether the compression code belongs to the baseline
// JPEG family used by macro sub-images.
func isJPEGFamily(code uint64) bool {
	return code == CompressionJPEGOld || code == CompressionJPEG
}

// eagerTags is the materialization allow-list: over-sized values for these
// tags are read from their external location during parsing. Everything else
// over 8 bytes is left as an offset/length pair.
var eagerTags = map[uint16]bool{
	TagBitsPerSample:   true,
	TagImageDesc:       true,
	TagStripOffsets:    true,
	TagStripByteCounts: true,
}
