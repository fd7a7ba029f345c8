package output

import "github.com/atotto/clipboard"

// Clipboard writes text somewhere the user can paste it from.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard uses the OS clipboard (pbcopy, xclip/xsel, wl-copy or the
// Windows API, depending on platform).
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}
