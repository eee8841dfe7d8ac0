package tree

import apierrors "github.com/pribylovaa/comments-web/internal/errors"

// View — то, что нужно шаблону для отрисовки снимка.
type View struct {
	State State
	// Error — текст для пользователя в состоянии Error.
	Error string
	Rows  []Row
}

// NewView строит представление снимка. В состоянии Error строк нет:
// устаревшие или частичные данные не показываются.
func NewView(s *Snapshot, maxDepth int) View {
	switch s.State {
	case Success:
		return View{State: Success, Rows: Rows(s.Forest, maxDepth)}
	case Error:
		return View{State: Error, Error: apierrors.Message(s.Err)}
	default:
		return View{State: Loading}
	}
}

func (v View) Loading() bool { return v.State == Loading }
func (v View) Failed() bool  { return v.State == Error }
func (v View) Empty() bool   { return v.State == Success && len(v.Rows) == 0 }
