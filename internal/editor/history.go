package editor

// Command is a reversible edit. Do applies it to a session and Undo
// reverts it; both go through the model's normal operations so its
// invariants hold after either.
type Command interface {
	Do(s *Session) error
	Undo(s *Session) error
	Label() string
}

// DefaultHistoryLimit is the number of commands kept when no limit is
// configured.
const DefaultHistoryLimit = 200

// History is an undo stack and a redo stack. Recording a new command
// clears the redo stack.
type History struct {
	undoStack []Command
	redoStack []Command
	limit     int
}

// NewHistory returns an empty history keeping at most limit commands.
// A limit of zero or less means DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push records an already applied command.
func (h *History) Push(c Command) {
	h.undoStack = append(h.undoStack, c)
	if over := len(h.undoStack) - h.limit; over > 0 {
		h.undoStack = append(h.undoStack[:0], h.undoStack[over:]...)
	}
	h.redoStack = nil
}

func (h *History) popUndo() (Command, bool) {
	if len(h.undoStack) == 0 {
		return nil, false
	}
	last := len(h.undoStack) - 1
	c := h.undoStack[last]
	h.undoStack = h.undoStack[:last]
	return c, true
}

func (h *History) popRedo() (Command, bool) {
	if len(h.redoStack) == 0 {
		return nil, false
	}
	last := len(h.redoStack) - 1
	c := h.redoStack[last]
	h.redoStack = h.redoStack[:last]
	return c, true
}

// CanUndo reports whether there is anything to undo.
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo reports whether there is anything to redo.
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Len returns the sizes of both stacks.
func (h *History) Len() (undo, redo int) { return len(h.undoStack), len(h.redoStack) }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}
