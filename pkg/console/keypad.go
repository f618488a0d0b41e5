package console

import (
	"sync"

	"gochip8/pkg/cpu"
)

const (
	keyEsc   = 0x1B
	keyCtrlC = 0x03

	// DefaultHoldFrames is how long a key stays down after its byte arrives.
	// Terminals send no key up events, so a press is latched instead.
	DefaultHoldFrames = 10
)

// DefaultKeyMap lays the hex keypad over the left of a QWERTY keyboard:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var DefaultKeyMap = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Keypad turns a stream of terminal input bytes into latched key state. Feed
// and Poll may be called from different goroutines.
type Keypad struct {
	mu     sync.Mutex
	keyMap map[byte]int
	hold   int
	held   [cpu.KeyCount]int
	quit   bool
}

func NewKeypad(keyMap map[byte]int, holdFrames int) *Keypad {
	if keyMap == nil {
		keyMap = DefaultKeyMap
	}
	if holdFrames <= 0 {
		holdFrames = DefaultHoldFrames
	}
	return &Keypad{keyMap: keyMap, hold: holdFrames}
}

// Feed processes raw input. A lone Esc or Ctrl-C requests quit; escape
// sequences such as arrow keys are skipped.
func (k *Keypad) Feed(input []byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i := 0; i < len(input); i++ {
		b := input[i]
		switch {
		case b == keyCtrlC:
			k.quit = true

		case b == keyEsc:
			if i+1 < len(input) && (input[i+1] == '[' || input[i+1] == 'O') {
				i = skipSequence(input, i+2)
				continue
			}
			k.quit = true

		default:
			if b >= 'A' && b <= 'Z' {
				b += 'a' - 'A'
			}
			if key, ok := k.keyMap[b]; ok && key >= 0 && key < cpu.KeyCount {
				k.held[key] = k.hold
			}
		}
	}
}

// skipSequence returns the index of the final byte of a CSI or SS3 sequence
// whose parameters start at i.
func skipSequence(input []byte, i int) int {
	for ; i < len(input); i++ {
		if input[i] >= 0x40 && input[i] <= 0x7E {
			return i
		}
	}
	return len(input) - 1
}

// Poll writes the current key state and ages every latched key by one frame.
func (k *Keypad) Poll(keys *[cpu.KeyCount]bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i := range k.held {
		keys[i] = k.held[i] > 0
		if k.held[i] > 0 {
			k.held[i]--
		}
	}
}

func (k *Keypad) QuitRequested() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.quit
}
