package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type BoardOption func(*Board)

func WithLogger(log *slog.Logger) BoardOption {
	return func(b *Board) { b.log = log }
}

func WithEditTrigger(t EditTrigger) BoardOption {
	return func(b *Board) { b.editOn = t }
}

func WithRand(rng *rand.Rand) BoardOption {
	return func(b *Board) { b.rng = rng }
}

func WithIDGenerator(newID func() string) BoardOption {
	return func(b *Board) { b.newID = newID }
}

type connectState struct {
	active  bool
	from    string
	side    Side
	anchor  vec
	pointer point
	session *GestureSession
}

// Board owns the canonical element and connection lists. The start element
// is kept apart from the list so that clearing or failing a generation never
// removes it.
type Board struct {
	start       Element
	elements    []Element
	connections []Connection
	views       map[string]*GraphElement

	conn  connectState
	layer *ConnectionLayer
	hub   *PointerHub

	container    size
	hasContainer bool

	mode    GenerationMode
	loading bool
	errMsg  string

	editOn EditTrigger
	log    *slog.Logger
	rng    *rand.Rand
	newID  func() string
}

func NewBoard(goal string, opts ...BoardOption) *Board {
	b := &Board{
		views: make(map[string]*GraphElement),
		layer: newConnectionLayer(),
		hub:   newPointerHub(),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.start = newStartElement(goal, b.containerSize())
	b.refresh()
	return b
}

// SetContainer records the measured canvas size. A non-positive size falls
// back to the default layout dimensions.
func (b *Board) SetContainer(width, height int) {
	b.hasContainer = width > 0 && height > 0
	b.container = size{width, height}
	b.start.placeStart(b.containerSize())
	b.refresh()
}

func (b *Board) containerSize() size {
	if !b.hasContainer {
		return size{fallbackContainerWidth, fallbackContainerHeight}
	}
	return b.container
}

func (b *Board) ContainerSize() size {
	return b.containerSize()
}

func (b *Board) pointers() *PointerHub {
	return b.hub
}

func (b *Board) SetEditTrigger(t EditTrigger) {
	b.editOn = t
	for _, v := range b.views {
		v.editOn = t
	}
}

// SetGoalSkill replaces the start element with a fresh one carrying text.
func (b *Board) SetGoalSkill(text string) {
	if b.conn.active && b.conn.from == startElementID {
		b.CancelConnection()
	}
	b.start = newStartElement(text, b.containerSize())
	delete(b.views, startElementID)
	b.refresh()
}

func (b *Board) GoalSkill() string {
	return b.start.Text
}

func (b *Board) Start() Element {
	return b.start
}

// Elements returns the non-start elements.
func (b *Board) Elements() []Element {
	out := make([]Element, len(b.elements))
	copy(out, b.elements)
	return out
}

func (b *Board) AllElements() []Element {
	out := make([]Element, 0, len(b.elements)+1)
	out = append(out, b.start)
	return append(out, b.elements...)
}

func (b *Board) Connections() []Connection {
	out := make([]Connection, len(b.connections))
	copy(out, b.connections)
	return out
}

func (b *Board) Paths() []renderedPath {
	return b.layer.Paths()
}

func (b *Board) Preview() (renderedPath, bool) {
	return b.layer.Preview()
}

func (b *Board) Pointer() point {
	return b.conn.pointer
}

func (b *Board) Loading() bool {
	return b.loading
}

func (b *Board) Err() string {
	return b.errMsg
}

func (b *Board) Mode() GenerationMode {
	return b.mode
}

func (b *Board) element(id string) (Element, bool) {
	if id == startElementID {
		return b.start, true
	}
	if i := b.indexOf(id); i >= 0 {
		return b.elements[i], true
	}
	return Element{}, false
}

func (b *Board) Element(id string) (Element, bool) {
	return b.element(id)
}

func (b *Board) indexOf(id string) int {
	for i, el := range b.elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) View(id string) *GraphElement {
	return b.views[id]
}

// Editing returns the element whose inline editor is open.
func (b *Board) Editing() *GraphElement {
	for _, v := range b.views {
		if v.state == StateEditing {
			return v
		}
	}
	return nil
}

// Hovered returns the topmost hovered element.
func (b *Board) Hovered() *GraphElement {
	all := b.AllElements()
	for i := len(all) - 1; i >= 0; i-- {
		if v := b.views[all[i].ID]; v != nil && v.hovered {
			return v
		}
	}
	return nil
}

// refresh re-syncs controllers and rebuilds every connection curve. It runs
// after each mutation.
func (b *Board) refresh() {
	all := b.AllElements()
	live := make(map[string]bool, len(all))
	for _, el := range all {
		live[el.ID] = true
		if _, ok := b.views[el.ID]; !ok {
			b.views[el.ID] = newGraphElement(el.ID, b, b.editOn)
		}
	}
	for id, v := range b.views {
		if !live[id] {
			if v.session != nil {
				v.session.Close()
			}
			delete(b.views, id)
		}
	}
	b.layer.recompute(all, b.connections)
}

func (b *Board) AddElement(text string) Element {
	c := b.containerSize()
	x := b.rng.Intn(max(c.W-minElementWidth, 1))
	y := b.rng.Intn(max(c.H-minElementHeight, 1))
	return b.addElementAt(point{x, y}, text)
}

func (b *Board) addElementAt(p point, text string) Element {
	el := newElement("element-"+b.newID(), 0, 0, text)
	pos := fitToGrid(p, el.size(), b.containerSize())
	el.X, el.Y = pos.X, pos.Y
	b.elements = append(b.elements, el)
	b.refresh()
	b.log.Debug("element added", slog.String("id", el.ID), slog.Int("x", el.X), slog.Int("y", el.Y))
	return el
}

func (b *Board) MoveElement(id string, x, y int) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	el := &b.elements[i]
	pos := fitToGrid(point{x, y}, el.size(), b.containerSize())
	el.X, el.Y = pos.X, pos.Y
	b.refresh()
	return true
}

// ResizeElement commits a grid aligned size to the canonical record and
// keeps the element inside the container.
func (b *Board) ResizeElement(id string, width, height int) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	c := b.containerSize()
	el := &b.elements[i]
	width = max(gridCeil(width, gridSize), minElementWidth)
	height = max(gridCeil(height, gridSize), minElementHeight)
	if limit := c.W - el.X; width > limit && limit >= minElementWidth {
		width = limit - limit%gridSize
	}
	if limit := c.H - el.Y; height > limit && limit >= minElementHeight {
		height = limit - limit%gridSize
	}
	el.Width, el.Height = width, height
	b.refresh()
	return true
}

func (b *Board) ChangeText(id, text string) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	el := &b.elements[i]
	el.SetText(text)
	pos := fitToGrid(el.position(), el.size(), b.containerSize())
	el.X, el.Y = pos.X, pos.Y
	b.refresh()
	return true
}

// DeleteElement removes the element and, in the same step, every
// connection that starts or ends at it.
func (b *Board) DeleteElement(id string) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	if b.conn.active && b.conn.from == id {
		b.CancelConnection()
	}
	b.elements = append(b.elements[:i], b.elements[i+1:]...)
	kept := b.connections[:0]
	for _, conn := range b.connections {
		if conn.From != id && conn.To != id {
			kept = append(kept, conn)
		}
	}
	b.connections = kept
	b.refresh()
	b.log.Debug("element deleted", slog.String("id", id))
	return true
}

// Connect appends a directed connection. Self connections are rejected
// with ErrInvalidConnection.
func (b *Board) Connect(from, to string, side Side) (Connection, error) {
	if from == to {
		return Connection{}, ErrInvalidConnection
	}
	if _, ok := b.element(from); !ok {
		return Connection{}, fmt.Errorf("source %q: %w", from, ErrNotFound)
	}
	if _, ok := b.element(to); !ok {
		return Connection{}, fmt.Errorf("target %q: %w", to, ErrNotFound)
	}
	conn := Connection{ID: b.newID(), From: from, To: to, Side: side}
	b.connections = append(b.connections, conn)
	b.refresh()
	return conn, nil
}

func (b *Board) DeleteConnection(id string) bool {
	for i, conn := range b.connections {
		if conn.ID == id {
			b.connections = append(b.connections[:i], b.connections[i+1:]...)
			b.refresh()
			return true
		}
	}
	return false
}

func (b *Board) connectionSource() (string, bool) {
	return b.conn.from, b.conn.active
}

func (b *Board) Connecting() (string, Side, bool) {
	return b.conn.from, b.conn.side, b.conn.active
}

// StartConnection enters ConnectingFrom and attaches a gesture session: a
// release resolves the connection, leaving the window cancels it.
func (b *Board) StartConnection(id string, side Side, anchor vec) bool {
	if _, ok := b.element(id); !ok {
		return false
	}
	if b.conn.active {
		b.CancelConnection()
	}
	b.conn = connectState{
		active:  true,
		from:    id,
		side:    side,
		anchor:  anchor,
		pointer: anchor.point(),
	}
	b.conn.session = b.hub.Begin(b.UpdatePointer, b.releaseConnection, b.cancelConnectionGesture)
	b.layer.setPreview(anchor, anchor)
	return true
}

func (b *Board) UpdatePointer(p point) {
	b.conn.pointer = p
	if b.conn.active {
		b.layer.setPreview(b.conn.anchor, p.vec())
	}
}

// releaseConnection resolves a release. A release back over the source,
// as after a plain click on a handle, keeps ConnectingFrom so the next
// press picks the target.
func (b *Board) releaseConnection(p point) {
	b.conn.pointer = p
	if b.releaseTarget(p) == b.conn.from {
		b.conn.session.Hold()
		return
	}
	b.CompleteConnection(b.elementAt(p), &p)
}

// releaseTarget is the element a release at p would attach to: the one
// under it, or the nearest within one grid unit.
func (b *Board) releaseTarget(p point) string {
	if id := b.elementAt(p); id != "" {
		return id
	}
	if el, ok := nearestElement(p.vec(), b.AllElements(), nearestThreshold); ok {
		return el.ID
	}
	return ""
}

func (b *Board) cancelConnectionGesture() {
	b.endConnection()
}

// CompleteConnection resolves ConnectingFrom. An empty targetID with a
// release point attaches to the nearest element within one grid unit, or
// creates a new element at the snapped release point. The board is always
// back to Idle afterwards; the result reports whether a connection was added.
func (b *Board) CompleteConnection(targetID string, release *point) bool {
	if !b.conn.active {
		return false
	}
	from, side := b.conn.from, b.conn.side
	b.endConnection()

	if targetID == "" && release != nil {
		targetID = b.releaseTarget(*release)
	}
	if targetID == "" {
		if release == nil {
			return false
		}
		targetID = b.addElementAt(*release, newElementText).ID
	}
	conn, err := b.Connect(from, targetID, side)
	if err != nil {
		if !errors.Is(err, ErrInvalidConnection) {
			b.log.Warn("connection rejected", slog.String("from", from), slog.String("to", targetID), slog.String("error", err.Error()))
		}
		return false
	}
	b.log.Debug("connection added", slog.String("id", conn.ID), slog.String("from", from), slog.String("to", targetID))
	return true
}

// ResolveConnection completes against the last known pointer position, the
// same way a click there would.
func (b *Board) ResolveConnection() bool {
	if !b.conn.active {
		return false
	}
	p := b.conn.pointer
	return b.CompleteConnection(b.elementAt(p), &p)
}

func (b *Board) CancelConnection() bool {
	if !b.conn.active {
		return false
	}
	b.endConnection()
	return true
}

func (b *Board) endConnection() {
	session := b.conn.session
	pointer := b.conn.pointer
	b.conn = connectState{pointer: pointer}
	session.Close()
	b.layer.clearPreview()
}

// elementAt returns the topmost element whose box contains p.
func (b *Board) elementAt(p point) string {
	all := b.AllElements()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].contains(p) {
			return all[i].ID
		}
	}
	return ""
}

// viewAt returns the topmost element with an interactive target at p,
// including hover handles outside the box.
func (b *Board) viewAt(p point) *GraphElement {
	all := b.AllElements()
	for i := len(all) - 1; i >= 0; i-- {
		if v := b.views[all[i].ID]; v != nil && v.hitTest(p).kind != hitNone {
			return v
		}
	}
	return nil
}

func (b *Board) updateHover(p point) {
	for _, v := range b.views {
		v.setHover(p)
	}
}

// PointerDown is a primary press on the canvas.
func (b *Board) PointerDown(p point, clicks int) {
	b.conn.pointer = p
	if editor := b.Editing(); editor != nil {
		el, _ := editor.data()
		if el.contains(p) {
			return
		}
		editor.Blur()
	}
	if b.conn.active {
		b.CompleteConnection(b.elementAt(p), &p)
		return
	}
	b.updateHover(p)
	if v := b.viewAt(p); v != nil {
		v.PointerDown(p, clicks)
		return
	}
	if id, ok := b.layer.HitTest(p.vec(), pathHitTolerance); ok {
		b.DeleteConnection(id)
	}
}

func (b *Board) PointerMove(p point) {
	b.updateHover(p)
	if !b.hub.Move(p) {
		b.UpdatePointer(p)
	}
}

func (b *Board) PointerUp(p point) {
	b.hub.Up(p)
}

func (b *Board) PointerLeave() {
	b.hub.Leave()
	for _, v := range b.views {
		v.hovered = false
	}
}

// Key routes a key to the open editor or the connection gesture. It
// reports whether the key was consumed.
func (b *Board) Key(key string) bool {
	if editor := b.Editing(); editor != nil {
		return editor.Key(key)
	}
	if b.conn.active {
		switch key {
		case "enter":
			b.ResolveConnection()
			return true
		case "esc":
			b.CancelConnection()
			return true
		}
	}
	return false
}

// Clear drops every element except the start element, every connection
// and any gesture in progress.
func (b *Board) Clear() {
	b.hub.Leave()
	b.endConnection()
	b.elements = nil
	b.connections = nil
	b.errMsg = ""
	b.refresh()
}

// BeginGeneration marks a request as outstanding. Only one may be in
// flight at a time.
func (b *Board) BeginGeneration(req GenerationRequest) error {
	if b.loading {
		return ErrGenerationInFlight
	}
	b.loading = true
	b.mode = req.Mode
	b.errMsg = ""
	return nil
}

// FinishGeneration applies a result, or on failure clears the graph and
// records the user visible message.
func (b *Board) FinishGeneration(res *GenerationResult, err error) {
	b.loading = false
	if err == nil && res == nil {
		err = fmt.Errorf("empty result: %w", ErrGenerationFailed)
	}
	if err == nil {
		err = res.Validate()
	}
	if err != nil {
		b.hub.Leave()
		b.endConnection()
		b.elements = nil
		b.connections = nil
		b.errMsg = generationFailureMessage(b.mode)
		b.refresh()
		b.log.Error("generation failed", slog.String("mode", b.mode.String()), slog.String("error", err.Error()))
		return
	}
	b.applyLayout(*res)
}

func (b *Board) Generate(ctx context.Context, gen PathGenerator, req GenerationRequest) error {
	if err := b.BeginGeneration(req); err != nil {
		return err
	}
	res, err := gen.Generate(ctx, req)
	b.FinishGeneration(res, err)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if b.errMsg != "" {
		return ErrGenerationFailed
	}
	return nil
}

func (b *Board) applyLayout(res GenerationResult) {
	b.hub.Leave()
	b.endConnection()
	if goal := res.GoalSkill(); goal != "" && goal != b.start.Text {
		b.start = newStartElement(goal, b.containerSize())
		delete(b.views, startElementID)
	}
	layout := layoutResult(res, b.containerSize())
	b.elements = layout.elements
	b.connections = make([]Connection, 0, len(layout.edges))
	for _, e := range layout.edges {
		b.connections = append(b.connections, Connection{ID: b.newID(), From: e.from, To: e.to, Side: e.side})
	}
	b.mode = res.Mode
	b.errMsg = ""
	b.refresh()
	b.log.Info("generation applied",
		slog.String("mode", res.Mode.String()),
		slog.Int("elements", len(b.elements)),
		slog.Int("connections", len(b.connections)))
}
