//go:build !linux && !windows && !darwin

package opengl

import "github.com/spaghettifunk/prism/engine/renderer/metadata"

func currentHandles() metadata.NativeHandles {
	return metadata.NativeHandles{API: "opengl"}
}
