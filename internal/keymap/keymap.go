// Package keymap provides the bidirectional mapping between the wire
// scancode space (kind-1 KeyInput.Scancode when it is a key event rather
// than a character event) and a canonical named-key enumeration. spec.md
// §4, GLOSSARY "Scancode".
package keymap

// Key is a canonical named key, independent of any particular scancode
// space.
type Key string

const (
	KeyUnknown Key = ""

	Key0 Key = "0"
	Key1 Key = "1"
	Key2 Key = "2"
	Key3 Key = "3"
	Key4 Key = "4"
	Key5 Key = "5"
	Key6 Key = "6"
	Key7 Key = "7"
	Key8 Key = "8"
	Key9 Key = "9"

	KeyA Key = "a"
	KeyB Key = "b"
	KeyC Key = "c"
	KeyD Key = "d"
	KeyE Key = "e"
	KeyF Key = "f"
	KeyG Key = "g"
	KeyH Key = "h"
	KeyI Key = "i"
	KeyJ Key = "j"
	KeyK Key = "k"
	KeyL Key = "l"
	KeyM Key = "m"
	KeyN Key = "n"
	KeyO Key = "o"
	KeyP Key = "p"
	KeyQ Key = "q"
	KeyR Key = "r"
	KeyS Key = "s"
	KeyT Key = "t"
	KeyU Key = "u"
	KeyV Key = "v"
	KeyW Key = "w"
	KeyX Key = "x"
	KeyY Key = "y"
	KeyZ Key = "z"

	KeyF1  Key = "f1"
	KeyF2  Key = "f2"
	KeyF3  Key = "f3"
	KeyF4  Key = "f4"
	KeyF5  Key = "f5"
	KeyF6  Key = "f6"
	KeyF7  Key = "f7"
	KeyF8  Key = "f8"
	KeyF9  Key = "f9"
	KeyF10 Key = "f10"
	KeyF11 Key = "f11"
	KeyF12 Key = "f12"

	KeyUp       Key = "up"
	KeyDown     Key = "down"
	KeyLeft     Key = "left"
	KeyRight    Key = "right"
	KeyEnter    Key = "enter"
	KeyEscape   Key = "escape"
	KeyBackspace Key = "backspace"
	KeyTab      Key = "tab"
	KeySpace    Key = "space"
	KeyLShift   Key = "leftShift"
	KeyRShift   Key = "rightShift"
	KeyLCtrl    Key = "leftCtrl"
	KeyRCtrl    Key = "rightCtrl"
	KeyLAlt     Key = "leftAlt"
	KeyRAlt     Key = "rightAlt"
	KeyHome     Key = "home"
	KeyEnd      Key = "end"
	KeyPageUp   Key = "pageUp"
	KeyPageDown Key = "pageDown"
	KeyInsert   Key = "insert"
	KeyDelete   Key = "delete"
	KeyCapsLock Key = "capsLock"

	KeyNum0 Key = "numPad0"
	KeyNum1 Key = "numPad1"
	KeyNum2 Key = "numPad2"
	KeyNum3 Key = "numPad3"
	KeyNum4 Key = "numPad4"
	KeyNum5 Key = "numPad5"
	KeyNum6 Key = "numPad6"
	KeyNum7 Key = "numPad7"
	KeyNum8 Key = "numPad8"
	KeyNum9 Key = "numPad9"
)

// table is the scancode <-> Key mapping. The values follow the classic
// PC/AT "set 1"/DirectInput DIK_* scancode numbering CraftOS-PC's wire
// protocol is built on (spec.md §9 calls for supplementing the KeyMap
// table the distilled spec omits; see SPEC_FULL.md).
//
// The navigation cluster (arrows, Home/End, PageUp/PageDown, Insert,
// Delete) and right-hand Ctrl/Alt only reach the keyboard controller via
// an 0xE0 escape prefix; DirectInput folds that prefix into the code by
// adding 0x80 to the un-prefixed set-1 byte (DIK_UP=0xC8, DIK_RCONTROL=
// 0x9D, and so on). The numpad block uses the un-prefixed bytes directly.
// Using the un-prefixed bytes for both (as an earlier revision of this
// table did) makes KeyNum7..KeyNum9/KeyNum4/KeyNum6/KeyNum1..KeyNum3/KeyNum0
// collide with KeyHome/KeyUp/KeyPageUp/KeyLeft/KeyRight/KeyEnd/KeyDown/
// KeyPageDown/KeyInsert — the +0x80 offset below is what DirectInput uses to keep
// them distinct.
var table = map[uint8]Key{
	0x02: Key1, 0x03: Key2, 0x04: Key3, 0x05: Key4, 0x06: Key5,
	0x07: Key6, 0x08: Key7, 0x09: Key8, 0x0A: Key9, 0x0B: Key0,

	0x1E: KeyA, 0x30: KeyB, 0x2E: KeyC, 0x20: KeyD, 0x12: KeyE,
	0x21: KeyF, 0x22: KeyG, 0x23: KeyH, 0x17: KeyI, 0x24: KeyJ,
	0x25: KeyK, 0x26: KeyL, 0x32: KeyM, 0x31: KeyN, 0x18: KeyO,
	0x19: KeyP, 0x10: KeyQ, 0x13: KeyR, 0x1F: KeyS, 0x14: KeyT,
	0x16: KeyU, 0x2F: KeyV, 0x11: KeyW, 0x2D: KeyX, 0x15: KeyY, 0x2C: KeyZ,

	0x3B: KeyF1, 0x3C: KeyF2, 0x3D: KeyF3, 0x3E: KeyF4, 0x3F: KeyF5,
	0x40: KeyF6, 0x41: KeyF7, 0x42: KeyF8, 0x43: KeyF9, 0x44: KeyF10,
	0x57: KeyF11, 0x58: KeyF12,

	0xC8: KeyUp, 0xD0: KeyDown, 0xCB: KeyLeft, 0xCD: KeyRight,
	0x1C: KeyEnter, 0x01: KeyEscape, 0x0E: KeyBackspace, 0x0F: KeyTab,
	0x39: KeySpace, 0x2A: KeyLShift, 0x36: KeyRShift,
	0x1D: KeyLCtrl, 0x9D: KeyRCtrl, 0x38: KeyLAlt, 0xB8: KeyRAlt,
	0xC7: KeyHome, 0xCF: KeyEnd, 0xC9: KeyPageUp, 0xD1: KeyPageDown,
	0xD2: KeyInsert, 0xD3: KeyDelete, 0x3A: KeyCapsLock,

	0x52: KeyNum0, 0x4F: KeyNum1, 0x50: KeyNum2, 0x51: KeyNum3,
	0x4B: KeyNum4, 0x4C: KeyNum5, 0x4D: KeyNum6,
	0x47: KeyNum7, 0x48: KeyNum8, 0x49: KeyNum9,
	0x4E: Key("numPadAdd"), 0x4A: Key("numPadSubtract"),
}

// ScancodeToKey returns the canonical key for a wire scancode, or
// KeyUnknown if the scancode isn't in the table.
func ScancodeToKey(scancode uint8) Key {
	if k, ok := table[scancode]; ok {
		return k
	}
	return KeyUnknown
}

// KeyToScancode returns the wire scancode for a canonical key, and whether
// the key is known.
func KeyToScancode(k Key) (uint8, bool) {
	// table is small enough that a linear scan avoids keeping a second map
	// in sync by hand.
	for sc, kk := range table {
		if kk == k {
			return sc, true
		}
	}
	return 0, false
}
