package nodeedit

import (
	"fmt"
	"log/slog"
)

// State is the mode of a Session.
type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session edits one selected node at a time and commits the edit into the
// document held by a DocumentRepository. A Session is not safe for
// concurrent use.
type Session struct {
	repo      DocumentRepository
	mirror    EditorMirror
	publisher NodePublisher
	logger    *slog.Logger
	cfg       Config

	node     *Node
	fields   FieldMap
	rowTypes map[string]RowType
	state    State
}

// Option configures a Session.
type Option func(*Session)

// WithMirror sets the text editor mirror updated after each commit.
func WithMirror(m EditorMirror) Option {
	return func(s *Session) { s.mirror = m }
}

// WithPublisher sets where the rebuilt node goes after each commit.
func WithPublisher(p NodePublisher) Option {
	return func(s *Session) { s.publisher = p }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithConfig sets the session settings. A config that fails Validate is
// replaced by DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// NewSession returns a Session in Viewing with nothing selected.
func NewSession(repo DocumentRepository, opts ...Option) *Session {
	s := &Session{
		repo:   repo,
		logger: slog.Default(),
		cfg:    DefaultConfig(),
		fields: FieldMap{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.Validate(); err != nil {
		s.logger.Warn("invalid session config, using defaults", "err", err)
		s.cfg = DefaultConfig()
	}
	return s
}

// Select makes node the current node, resets the fields from its rows and
// returns to Viewing.
func (s *Session) Select(node Node) {
	n := node
	n.Path = append(Path{}, node.Path...)
	n.Text = append([]Row(nil), node.Text...)
	s.node = &n
	s.resetFields()
	s.state = Viewing
}

func (s *Session) resetFields() {
	s.fields = DeriveEditable(s.node.Text)
	s.rowTypes = make(map[string]RowType, len(s.fields))
	prims := PrimitiveRows(s.node.Text)
	if isRootScalar(prims) {
		s.rowTypes[RootField] = prims[0].Type
		return
	}
	for _, r := range prims {
		if r.Keyed() {
			s.rowTypes[r.Key] = r.Type
		}
	}
}

// Node returns the selected node; ok is false when nothing is selected.
func (s *Session) Node() (Node, bool) {
	if s.node == nil {
		return Node{}, false
	}
	return *s.node, true
}

// State returns the current mode.
func (s *Session) State() State { return s.state }

// Rows returns a copy of the selected node's rows.
func (s *Session) Rows() []Row {
	if s.node == nil {
		return nil
	}
	return append([]Row(nil), s.node.Text...)
}

// Display is the read-only rendering of the selected node.
func (s *Session) Display() string {
	if s.node == nil {
		return DeriveDisplay(nil)
	}
	return DeriveDisplay(s.node.Text)
}

// PathString renders the selected node's path.
func (s *Session) PathString() string {
	if s.node == nil {
		return Path{}.String()
	}
	return s.node.Path.String()
}

// Fields returns a copy of the current field input.
func (s *Session) Fields() FieldMap { return s.fields.Clone() }

// FieldKeys returns the editable field keys in row order.
func (s *Session) FieldKeys() []string {
	if s.node == nil {
		return nil
	}
	return EditableKeys(s.node.Text)
}

// FieldType returns the row type behind a field key.
func (s *Session) FieldType(key string) (RowType, bool) {
	t, ok := s.rowTypes[key]
	return t, ok
}

// Edit switches from Viewing to Editing.
func (s *Session) Edit() error {
	if s.node == nil {
		return ErrNoSelection
	}
	s.state = Editing
	return nil
}

// SetField records new input for an existing field.
func (s *Session) SetField(key string, v FieldValue) error {
	if s.state != Editing {
		return ErrNotEditing
	}
	if _, ok := s.fields[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	s.fields[key] = v
	return nil
}

// SetFieldText records text input for key, converted to the variant its
// row type expects.
func (s *Session) SetFieldText(key, raw string) error {
	if s.state != Editing {
		return ErrNotEditing
	}
	t, ok := s.rowTypes[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	v, err := FieldFromText(key, t, raw)
	if err != nil {
		return err
	}
	s.fields[key] = v
	return nil
}

// Cancel discards field input and returns to Viewing.
func (s *Session) Cancel() {
	if s.node != nil {
		s.resetFields()
	}
	s.state = Viewing
}

// CommitResult describes a successful Save.
type CommitResult struct {
	// Document is the new document text as written to the repository.
	Document string
	// Node is the rebuilt node that was published.
	Node Node
	// Changed is false when the commit left the document value unchanged.
	Changed bool
	// MergePatch is the RFC 7386 patch from the old to the new document.
	// It is nil when no merge patch can express the change.
	MergePatch []byte
	// MirrorErr is the error returned by the editor mirror, if any.
	MirrorErr error
}

// Save writes the field input into the document at the selected node's
// path. On error nothing is written and the session stays in Editing.
func (s *Session) Save() (*CommitResult, error) {
	if s.node == nil {
		return nil, ErrNoSelection
	}
	if s.state != Editing {
		return nil, ErrNotEditing
	}
	path := s.node.Path
	log := s.logger.With("path", path.String())

	parsed, err := ReconstructWithPolicy(s.node.Text, s.fields, s.cfg.NumberPolicy)
	if err != nil {
		log.Warn("rejected node edit", "fields", describe(s.fields), "err", err)
		return nil, err
	}

	before, err := s.repo.Read()
	if err != nil {
		log.Error("failed to read document", "err", err)
		return nil, fmt.Errorf("nodeedit: failed to read document: %w", err)
	}
	var root any
	if before != "" {
		root, err = Decode([]byte(before))
		if err != nil {
			perr := &ParseError{Err: err}
			log.Warn("rejected node edit", "err", perr)
			return nil, perr
		}
	}

	valueToSet := parsed
	if existing, ok := GetAtPath(root, path); ok && isPlainObject(existing) && isPlainObject(parsed) {
		valueToSet = shallowMerge(existing.(*Object), parsed.(*Object))
	}
	newRoot := SetAtPath(root, path, valueToSet)

	text, err := Encode(newRoot, s.cfg.indent())
	if err != nil {
		log.Warn("rejected node edit", "err", err)
		return nil, err
	}
	if err := s.repo.Write(text); err != nil {
		log.Error("failed to write document", "err", err)
		return nil, fmt.Errorf("nodeedit: failed to write document: %w", err)
	}

	res := &CommitResult{Document: text, Changed: before == "" || !Equal([]byte(before), []byte(text))}
	if before != "" {
		if mp, err := MergePatch([]byte(before), []byte(text)); err == nil {
			res.MergePatch = mp
		} else {
			log.Debug("no merge patch for commit", "err", err)
		}
	}

	if s.mirror != nil {
		if err := s.mirror.SetContents(Contents{Contents: text, HasChanges: false, SkipUpdate: true}); err != nil {
			log.Warn("editor mirror out of sync", "err", err)
			res.MirrorErr = err
		}
	}

	updated := Node{Path: append(Path{}, path...), Text: RowsFromValue(parsed)}
	res.Node = updated
	if s.publisher != nil {
		s.publisher.SetSelectedNode(updated)
	}
	s.Select(updated)
	log.Info("committed node edit", "changed", res.Changed)
	return res, nil
}
