package metadata

/**
 * @brief Pixel layout of a texture.
 */
type TextureFormat uint8

const (
	/** @brief Storage not specified yet. */
	TextureFormatUndefined TextureFormat = iota
	/** @brief 4 channels, 8 bits each, normalized. */
	TextureFormatRGBA8
)

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8:
		return "RGBA8"
	default:
		return "undefined"
	}
}

/** @brief Bytes per pixel for the format, 0 if undefined. */
func (f TextureFormat) BytesPerPixel() int {
	if f == TextureFormatRGBA8 {
		return 4
	}
	return 0
}

type TextureFilter uint8

const (
	TextureFilterModeNearest TextureFilter = iota
	TextureFilterModeLinear
)

/**
 * @brief Represents a 2D texture owned by the rasterizer.
 */
type Texture struct {
	/** @brief The backend texture name (GL texture id, or a software slot). */
	ID uint32
	/** @brief The texture Width. 0 until storage is specified. */
	Width uint32
	/** @brief The texture Height. 0 until storage is specified. */
	Height uint32
	/** @brief The pixel format. */
	Format TextureFormat
	/** @brief Minify/magnify filtering. */
	Filter TextureFilter
	/** @brief Incremented every time the pixel data is replaced. */
	Generation uint32
	/** @brief Backend specific data. */
	InternalData interface{}
}

/** @brief Reports whether format and dimensions have been defined. */
func (t *Texture) IsSpecified() bool {
	return t != nil && t.Format != TextureFormatUndefined && t.Width > 0 && t.Height > 0
}

/** @brief Size in bytes of the full level-0 image. */
func (t *Texture) ByteSize() int {
	return int(t.Width) * int(t.Height) * t.Format.BytesPerPixel()
}
