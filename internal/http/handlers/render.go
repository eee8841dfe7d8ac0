package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	apierrors "github.com/pribylovaa/comments-web/internal/errors"
	"github.com/pribylovaa/comments-web/internal/models"
	logctx "github.com/pribylovaa/comments-web/internal/pkg/log"
	"github.com/pribylovaa/comments-web/internal/tree"
	"github.com/pribylovaa/comments-web/internal/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

// dateLayout — дата и время (часы:минуты) в поясе render.timezone.
const dateLayout = "2006-01-02 15:04"

// indentStep — отступ одного уровня вложенности, rem.
const indentStep = 2

const (
	pageIndex    = "index"
	pageLogin    = "login"
	pageRegister = "register"
)

// templates — набор страниц; каждая страница — клон базового набора
// (layout + формы + дерево) со своим блоком content.
type templates struct {
	base  *template.Template
	pages map[string]*template.Template
}

func parseTemplates(loc *time.Location) (*templates, error) {
	const op = "internal/http/handlers/parseTemplates"

	funcs := template.FuncMap{
		"datetime": func(ts models.Timestamp) string {
			if ts.IsZero() {
				return ""
			}
			return ts.In(loc).Format(dateLayout)
		},
		"iso": func(ts models.Timestamp) string {
			if ts.IsZero() {
				return ""
			}
			return ts.UTC().Format(time.RFC3339)
		},
		"remaining": func(s string) int {
			return validate.ContentMax - utf8.RuneCountInString(s)
		},
		"indent": indent,
		"short": func(s string) bool {
			n := utf8.RuneCountInString(s)
			return n > 0 && n < validate.ContentMin
		},
	}

	base, err := template.New("base").Funcs(funcs).ParseFS(templateFS,
		"templates/layout.html", "templates/forms.html", "templates/tree.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t := &templates{base: base, pages: make(map[string]*template.Template, 3)}
	for _, name := range []string{pageIndex, pageLogin, pageRegister} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("%s: clone %s: %w", op, name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", op, name, err)
		}
		t.pages[name] = clone
	}

	return t, nil
}

// indent — отступ строки дерева по её (уже ограниченной) глубине.
func indent(depth int) template.CSS {
	return template.CSS(fmt.Sprintf("margin-left: %drem", depth*indentStep))
}

// page — данные полной страницы.
type page struct {
	Title  string
	User   *models.User
	Notice string

	// AuthKind — "login" или "register": какая форма показывается гостю.
	AuthKind string
	Auth     *formState

	Tree *treeData
}

// formState — состояние формы входа/регистрации для повторного показа.
// Пароль назад не подставляется.
type formState struct {
	Values   map[string]string
	Fields   map[string]string
	Error    string
	Remember bool
}

func newFormState() *formState {
	return &formState{Values: map[string]string{}, Fields: map[string]string{}}
}

// apply раскладывает ошибку: поля — в Fields, прочее — общим сообщением.
func (f *formState) apply(err error) {
	if fields := fieldErrors(err); fields != nil {
		f.Fields = fields
		return
	}
	f.Error = apierrors.Message(err)
}

// commentForm — состояние формы комментария или ответа.
type commentForm struct {
	ParentID int64
	Content  string
	Error    string
	Fields   map[string]string
	Min, Max int
}

func newCommentForm(parentID int64) commentForm {
	return commentForm{
		ParentID: parentID,
		Fields:   map[string]string{},
		Min:      validate.ContentMin,
		Max:      validate.ContentMax,
	}
}

// treeData — данные фрагмента дерева.
type treeData struct {
	View     tree.View
	LoggedIn bool
	Root     commentForm
	// Reply — форма ответа с ошибкой, которую нужно показать раскрытой.
	Reply *commentForm
}

// ReplyFor — форма ответа на узел id (с ошибкой, если отправка не удалась).
func (t *treeData) ReplyFor(id int64) commentForm {
	if t.Reply != nil && t.Reply.ParentID == id {
		return *t.Reply
	}
	return newCommentForm(id)
}

// ReplyOpen — раскрыть ли форму ответа на узел id.
func (t *treeData) ReplyOpen(id int64) bool {
	return t.Reply != nil && t.Reply.ParentID == id
}

// render исполняет шаблон в буфер и только затем пишет ответ, чтобы
// ошибка шаблона не оставила наполовину отданную страницу.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, ok := h.tpl.pages[name]
	if !ok {
		h.renderFailed(w, r, fmt.Errorf("unknown page %q", name))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.renderFailed(w, r, err)
		return
	}

	writeHTML(w, status, buf.Bytes())
}

func (h *Handlers) renderFragment(w http.ResponseWriter, r *http.Request, status int, data *treeData) {
	var buf bytes.Buffer
	if err := h.tpl.base.ExecuteTemplate(&buf, "tree", data); err != nil {
		h.renderFailed(w, r, err)
		return
	}

	writeHTML(w, status, buf.Bytes())
}

func (h *Handlers) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	logctx.From(r.Context()).Error("template_render_failed", slog.String("err", err.Error()))
	apierrors.WriteError(w, r, err)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
