// Package all imports all audio backends implemented by the input package.
package all

import (
	_ "github.com/noriah/mangler/input/ffmpeg"
	_ "github.com/noriah/mangler/input/parec"
)
