package metadata

import "image/color"

/**
 * @brief Handles of the rendering context current on the render thread,
 * needed to build a compute context that shares its objects.
 */
type NativeHandles struct {
	/** @brief The rendering API the handles belong to ("opengl", "software"). */
	API string
	/** @brief GLX display, WGL device context; 0 on darwin. */
	Display uintptr
	/** @brief GLX/WGL context, or the CGL share group on darwin. */
	Context uintptr
}

/**
 * @brief Everything a single frame needs.
 */
type RenderPacket struct {
	DeltaTime  float64
	ClearColor color.RGBA
	Geometry   *Geometry
	Texture    *Texture
}
