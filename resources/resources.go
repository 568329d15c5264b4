// Package resources embeds the WGSL shaders shipped with the engine.
package resources

import (
	"embed"
	"io/fs"
)

//go:embed shaders/*.wgsl
var files embed.FS

// Shaders is the shader tree rooted at shaders/, so paths look like
// "basic.wgsl".
var Shaders fs.FS = mustSub(files, "shaders")

// Shader file names.
const (
	// Basic holds vs_main and fs_main in one file.
	Basic = "basic.wgsl"
	// BasicVertex and BasicFragment are the same program split by stage.
	BasicVertex   = "basic_vs.wgsl"
	BasicFragment = "basic_fs.wgsl"
)

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
