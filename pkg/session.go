package pkg

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/image"
	"github.com/notnil/chess/opening"
	"github.com/qnkhuat/chesstutor/pkg/engine"
	"github.com/qnkhuat/chesstutor/pkg/tutor"
	"github.com/rs/zerolog"
)

const DefaultEngineGrace = 5 * time.Second

var moveLike = regexp.MustCompile(`^(?:[KQRBN]?[a-h]?[1-8]?x?[a-h][1-8](?:=?[QRBNqrbn])?|[a-h][1-8][a-h][1-8][qrbn]?|[O0]-[O0](?:-[O0])?)[+#]?$`)

// looksLikeMove reports whether input is written like a move, legal or not.
func looksLikeMove(input string) bool {
	return moveLike.MatchString(input)
}

var (
	ErrBusy             = errors.New("engine is thinking")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrGameOver         = errors.New("game is over")
	ErrUndoNotAvailable = errors.New("no moves available to undo")
	ErrEngineOffline    = errors.New("engine offline")
)

// Analyzer is the engine as the session uses it. *engine.Engine implements
// it, together with the optional SetSkill, NewGame and Name methods.
type Analyzer interface {
	Analyze(pos *chess.Position, movetime time.Duration) (uint64, error)
	Stop() error
	Lines() <-chan engine.Line
}

type skillSetter interface {
	SetSkill(level int) error
}

type newGamer interface {
	NewGame() error
}

type namer interface {
	Name() string
}

type Advisor interface {
	Advise(ctx context.Context, req tutor.Request) tutor.Advice
}

type Options struct {
	Name     string
	User     PlayerColor
	FEN      string // start position, initial position when empty
	Engine   Analyzer
	Advisor  Advisor
	Renderer Renderer
	Logger   zerolog.Logger

	MoveTime    time.Duration
	EngineGrace time.Duration
}

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

func ecoLookup(moves []*chess.Move) string {
	ecoOnce.Do(func() {
		ecoBook = opening.NewBookECO()
	})
	if o := ecoBook.Find(moves); o != nil {
		return openingLabel(o.Code(), o.Title())
	}
	return ""
}

// openingLabel joins the ECO code with the opening's names. Book titles list
// alternative names separated by "; " and some repeat the code among them.
func openingLabel(code, title string) string {
	var names []string
	for _, name := range strings.Split(title, "; ") {
		if name = strings.TrimSpace(name); name != "" && name != code {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return code
	}
	return code + " " + strings.Join(names, "; ")
}

// Session is one game between the user and the engine, with the tutor on the
// side. Every handler runs under mu, so state changes never interleave; each
// one that changes state renders before it returns.
type Session struct {
	mu sync.Mutex

	name     string
	user     PlayerColor
	startFEN string
	engine   Analyzer
	advisor  Advisor
	renderer Renderer
	log      zerolog.Logger
	moveTime time.Duration
	grace    time.Duration

	game        *chess.Game
	perspective PlayerColor
	announced   bool // outcome already written to the transcript

	thinking  bool
	searchGen uint64 // outstanding search, 0 when none
	deadline  Deadline
	eval      engine.Evaluation

	// epoch changes on reset and undo; advice asked in an older epoch is
	// dropped when it arrives.
	epoch uint64

	selecting     bool
	lastSelection chess.Square
	highlights    map[chess.Square]bool

	transcript Transcript
	seq        uint64

	ctx    context.Context
	cancel context.CancelFunc
	advice sync.WaitGroup
}

func NewSession(opts Options) (*Session, error) {
	game, err := GameFromFEN(opts.FEN)
	if err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	if opts.MoveTime <= 0 {
		opts.MoveTime = engine.DefaultMoveTime
	}
	if opts.EngineGrace <= 0 {
		opts.EngineGrace = DefaultEngineGrace
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		name:          opts.Name,
		user:          opts.User,
		startFEN:      opts.FEN,
		engine:        opts.Engine,
		advisor:       opts.Advisor,
		renderer:      opts.Renderer,
		log:           opts.Logger.With().Str("session", opts.Name).Logger(),
		moveTime:      opts.MoveTime,
		grace:         opts.EngineGrace,
		game:          game,
		perspective:   opts.User,
		lastSelection: chess.NoSquare,
		highlights:    make(map[chess.Square]bool),
		ctx:           ctx,
		cancel:        cancel,
	}

	s.transcript.Append(RoleSystem, "[SYSTEM] TUTOR_ONLINE. ENTER A MOVE (e4) OR A QUESTION. 'help' LISTS COMMANDS.")
	if s.engine == nil {
		s.transcript.Append(RoleSystem, "[ENGINE] OFFLINE. YOU MOVE BOTH SIDES.")
	}
	return s, nil
}

// Run draws the first frame, lets the engine open when it plays white, and
// feeds engine output into the session until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.engineTurnL() {
		s.dispatchL()
	}
	s.renderL()
	s.mu.Unlock()

	var lines <-chan engine.Line
	if s.engine != nil {
		lines = s.engine.Lines()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				s.engineGone()
				lines = nil
				continue
			}
			s.handleEngineLine(line)
		}
	}
}

// Close cancels outstanding advice requests and waits for them.
func (s *Session) Close() {
	s.cancel()
	s.advice.Wait()

	s.mu.Lock()
	s.deadline.Disarm()
	s.mu.Unlock()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotL()
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phaseL()
}

// Click handles a press on sq. It returns false when the press was rejected
// or meant nothing; the session is then unchanged.
func (s *Session) Click(sq chess.Square) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.thinking || s.gameOverL() {
		s.log.Debug().Str("square", sq.String()).Str("phase", s.phaseL().String()).Msg("click rejected")
		return false
	}

	if !s.selecting {
		if !s.ownPieceL(sq) {
			return false
		}
		s.selectL(sq)
		s.renderL()
		return true
	}

	if sq == s.lastSelection { // same square again deselects
		s.clearSelectionL()
		s.renderL()
		return true
	}

	if move := s.findMoveL(s.lastSelection, sq); move != nil {
		s.clearSelectionL()
		s.playUserMoveL(move)
		s.renderL()
		return true
	}

	s.log.Debug().Str("from", s.lastSelection.String()).Str("to", sq.String()).Msg("invalid move")
	if s.ownPieceL(sq) {
		s.selectL(sq)
	} else {
		s.clearSelectionL()
	}
	s.renderL()
	return true
}

// Submit handles one line typed in the terminal: a command, a move, or a
// question for the tutor, tried in that order.
func (s *Session) Submit(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	action, args := ParseAction(input)
	switch action {
	case ActionUndo:
		s.undoL(input)
	case ActionClear:
		s.transcript.Clear()
		s.system("[SYSTEM] TERMINAL_CLEARED.")
	case ActionReset:
		s.resetL()
	case ActionHelp:
		for _, line := range helpLines {
			s.system(line)
		}
	case ActionGo:
		s.goL()
	case ActionSkill:
		s.skillL(args[0])
	case ActionPGN:
		s.system("[PGN] " + strings.TrimSpace(s.game.String()))
	case ActionFEN:
		s.system("[FEN] " + s.game.Position().String())
	case ActionFlip:
		s.perspective = s.perspective.Opponent()
	case ActionSave:
		s.saveL(args[0])
	default:
		move := s.parseMoveL(input)
		switch {
		case move != nil:
			s.typedMoveL(input, move)
		case looksLikeMove(input) && s.canMoveL() != nil:
			s.rejectL(input, s.canMoveL())
		default:
			s.askL(input)
		}
	}
	s.renderL()
}

func (s *Session) system(text string) {
	s.transcript.Append(RoleSystem, text)
}

func (s *Session) typedMoveL(input string, move *chess.Move) {
	if err := s.canMoveL(); err != nil {
		s.rejectL(input, err)
		return
	}
	s.system(fmt.Sprintf("> %s [COMMAND_ACCEPTED]", input))
	s.clearSelectionL()
	s.playUserMoveL(move)
}

func (s *Session) rejectL(input string, err error) {
	s.system(fmt.Sprintf("> %s [REJECTED] %s", input, strings.ToUpper(strings.ReplaceAll(err.Error(), " ", "_"))))
}

func (s *Session) canMoveL() error {
	switch {
	case s.gameOverL():
		return ErrGameOver
	case s.thinking:
		return ErrBusy
	case s.engine != nil && s.game.Position().Turn() != s.user.Chess():
		return ErrNotYourTurn
	}
	return nil
}

// playUserMoveL applies move and hands the position to the engine.
func (s *Session) playUserMoveL(move *chess.Move) {
	san, err := s.applyL(move)
	if err != nil {
		s.log.Error().Err(err).Str("move", move.String()).Msg("user move rejected by rules")
		return
	}
	s.log.Info().Str("move", san).Msg("user move")

	if s.gameOverL() || s.engine == nil {
		s.system(fmt.Sprintf("[USER_MOVE] %s REGISTERED.", san))
		if !s.announceOutcomeL() {
			s.requestAdviceL(s.adviceRequestL(""))
		}
		return
	}
	s.system(fmt.Sprintf("[USER_MOVE] %s REGISTERED. ANALYZING...", san))
	s.dispatchL()
}

// applyL is the only place the game advances. It returns the move in SAN.
func (s *Session) applyL(move *chess.Move) (string, error) {
	pos := s.game.Position()
	san := chess.AlgebraicNotation{}.Encode(pos, move)
	if err := s.game.Move(move); err != nil {
		return "", err
	}
	s.claimDrawL()
	return san, nil
}

// claimDrawL ends the game on a claimable threefold or fifty-move draw.
func (s *Session) claimDrawL() {
	if s.game.Outcome() != chess.NoOutcome {
		return
	}
	for _, method := range s.game.EligibleDraws() {
		if method != chess.ThreefoldRepetition && method != chess.FiftyMoveRule {
			continue
		}
		if err := s.game.Draw(method); err == nil {
			return
		}
	}
}

// announceOutcomeL reports whether the game is over, writing the result to
// the transcript the first time.
func (s *Session) announceOutcomeL() bool {
	if !s.gameOverL() {
		return false
	}
	if !s.announced {
		s.announced = true
		if s.game.Method() == chess.Checkmate {
			s.system("[CRITICAL] CHECKMATE DETECTED.")
		} else {
			s.system(fmt.Sprintf("[STATUS] DRAW DETECTED. (%v)", s.game.Method()))
		}
	}
	return true
}

func (s *Session) dispatchL() {
	if s.engine == nil || s.thinking {
		return
	}
	gen, err := s.engine.Analyze(s.game.Position(), s.moveTime)
	if err != nil {
		s.log.Error().Err(err).Msg("analyze failed")
		s.system("[ENGINE] ERROR: " + err.Error())
		return
	}
	s.thinking = true
	s.searchGen = gen
	s.deadline.Arm(gen, s.moveTime+s.grace, s.engineTimeout)
	s.log.Debug().Uint64("gen", gen).Str("fen", s.game.Position().String()).Msg("search dispatched")
}

// cancelSearchL forgets the outstanding search. Its bestmove, if it still
// comes, no longer matches searchGen and is dropped.
func (s *Session) cancelSearchL() {
	if !s.thinking {
		return
	}
	if err := s.engine.Stop(); err != nil {
		s.log.Error().Err(err).Msg("stop failed")
	}
	s.thinking = false
	s.searchGen = 0
	s.deadline.Disarm()
}

func (s *Session) handleEngineLine(line engine.Line) {
	reply := engine.ParseLine(line.Text)
	if reply.Kind == engine.KindOther {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.thinking || line.Gen != s.searchGen {
		s.log.Debug().Uint64("gen", line.Gen).Uint64("want", s.searchGen).Str("line", line.Text).Msg("dropping stale engine line")
		return
	}

	switch reply.Kind {
	case engine.KindScore:
		s.eval = engine.FromEngine(reply.Score, s.game.Position().Turn())
	case engine.KindBestMove:
		s.thinking = false
		s.searchGen = 0
		s.deadline.Disarm()
		s.applyEngineMoveL(reply)
	}
	s.renderL()
}

func (s *Session) applyEngineMoveL(reply engine.Reply) {
	switch {
	case reply.NoMove:
		s.log.Info().Msg("engine reports no legal move")
		return
	case reply.Malformed:
		s.log.Error().Msg("malformed bestmove")
		return
	}

	move := s.findUCIMoveL(reply.Move)
	if move == nil {
		s.log.Error().Str("move", reply.Move).Str("fen", s.game.Position().String()).Msg("failed to apply engine move")
		return
	}
	san, err := s.applyL(move)
	if err != nil {
		s.log.Error().Err(err).Str("move", reply.Move).Msg("failed to apply engine move")
		return
	}
	s.log.Info().Str("move", san).Str("eval", s.eval.String()).Msg("engine move")

	s.clearSelectionL()
	s.system(fmt.Sprintf("[CPU_MOVE] %s EXECUTED.", san))
	s.announceOutcomeL()
	s.requestAdviceL(s.adviceRequestL(""))
}

func (s *Session) engineTimeout(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a timer that fired while being disarmed
	if !s.thinking || s.searchGen != gen || s.deadline.Gen() != gen {
		return
	}
	s.log.Warn().Uint64("gen", gen).Dur("after", s.moveTime+s.grace).Msg("engine did not answer")
	s.cancelSearchL()
	s.system("[ENGINE] NO_RESPONSE. TYPE 'go' TO RETRY.")
	s.renderL()
}

func (s *Session) engineGone() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Error().Err(ErrEngineOffline).Msg("engine output closed")
	s.thinking = false
	s.searchGen = 0
	s.deadline.Disarm()
	s.engine = nil
	s.system("[ENGINE] OFFLINE. YOU MOVE BOTH SIDES.")
	s.renderL()
}

func (s *Session) goL() {
	switch {
	case s.thinking:
		s.system("[BUSY] ENGINE_THINKING.")
	case s.gameOverL():
		s.system("[STATUS] GAME_OVER. TYPE 'new' TO PLAY AGAIN.")
	case s.engine == nil:
		s.system("[ENGINE] OFFLINE.")
	case !s.engineTurnL():
		s.system("[SYSTEM] YOUR_MOVE.")
	default:
		s.system("[SYSTEM] ENGINE_TO_MOVE. ANALYZING...")
		s.dispatchL()
	}
}

func (s *Session) skillL(arg string) {
	level, _ := strconv.Atoi(arg)
	setter, ok := s.engine.(skillSetter)
	if !ok {
		s.system("[ENGINE] OFFLINE.")
		return
	}
	if err := setter.SetSkill(level); err != nil {
		s.system("[ENGINE] ERROR: " + err.Error())
		return
	}
	s.system(fmt.Sprintf("[ENGINE] SKILL_LEVEL %d.", level))
}

func (s *Session) saveL(path string) {
	f, err := os.Create(path)
	if err != nil {
		s.system("[ERROR] SAVE_FAILED: " + err.Error())
		return
	}
	defer f.Close()

	var marked []chess.Square
	if moves := s.game.Moves(); len(moves) > 0 {
		last := moves[len(moves)-1]
		marked = append(marked, last.S1(), last.S2())
	}
	err = image.SVG(f, s.game.Position().Board(),
		image.MarkSquares(color.RGBA{R: 255, G: 255, B: 0, A: 1}, marked...),
	)
	if err != nil {
		s.system("[ERROR] SAVE_FAILED: " + err.Error())
		return
	}
	s.system("[SYSTEM] BOARD_SAVED " + path)
}

// undoL takes back the user's last move together with the engine reply
// that followed it, if any. With no engine it takes back one ply.
func (s *Session) undoL(input string) {
	s.system(fmt.Sprintf("> %s [REVERTING_STATE...]", input))

	moves := s.game.Moves()
	if len(moves) == 0 {
		s.log.Debug().Err(ErrUndoNotAvailable).Msg("undo")
		s.system("[SYSTEM] NOTHING_TO_UNDO.")
		return
	}
	s.cancelSearchL()

	plies := 1
	lastMover := s.game.Position().Turn().Other()
	if s.engine != nil && lastMover != s.user.Chess() {
		plies = 2
	}
	if plies > len(moves) {
		plies = len(moves)
	}

	game, err := GameFromFEN(s.startFEN)
	if err != nil {
		s.log.Error().Err(err).Msg("undo: start position")
		return
	}
	for _, m := range moves[:len(moves)-plies] {
		if err := game.Move(m); err != nil {
			s.log.Error().Err(err).Str("move", m.String()).Msg("undo: replay failed")
			return
		}
	}

	s.game = game
	s.epoch++
	s.eval = engine.Evaluation{}
	s.announced = false
	s.clearSelectionL()
	s.system("[SYSTEM] STATE_RESTORED. MAKE YOUR MOVE.")
	if s.engineTurnL() {
		s.dispatchL()
	}
}

func (s *Session) resetL() {
	s.cancelSearchL()

	game, err := GameFromFEN(s.startFEN)
	if err != nil {
		s.log.Error().Err(err).Msg("reset: start position")
		return
	}
	s.game = game
	s.epoch++
	s.eval = engine.Evaluation{}
	s.announced = false
	s.clearSelectionL()

	if ng, ok := s.engine.(newGamer); ok {
		if err := ng.NewGame(); err != nil {
			s.log.Error().Err(err).Msg("ucinewgame failed")
		}
	}
	s.transcript.Reset()
	s.system("[SYSTEM] RESETTING_STATE... OK.")
	s.log.Info().Msg("new game")

	if s.engineTurnL() {
		s.dispatchL()
	}
}

// askL forwards a free text question. It never looks at the thinking flag.
func (s *Session) askL(question string) {
	req := s.adviceRequestL(question)
	s.transcript.Append(RoleUser, "> "+question)
	if s.advisor == nil {
		s.system("[ERROR] TUTOR_OFFLINE: no tutor configured")
		return
	}
	s.requestAdviceL(req)
}

func (s *Session) adviceRequestL(question string) tutor.Request {
	pos := s.game.Position()
	legal := make([]string, 0, 32)
	for _, m := range s.game.ValidMoves() {
		legal = append(legal, chess.AlgebraicNotation{}.Encode(pos, m))
	}
	return tutor.Request{
		FEN:        pos.String(),
		History:    s.sanMovesL(),
		PGN:        strings.TrimSpace(s.game.String()),
		Evaluation: s.eval.String(),
		Opening:    s.openingL(),
		LegalMoves: legal,
		Question:   question,
		Transcript: s.transcript.Context(),
	}
}

// requestAdviceL asks the tutor in the background. The answer is appended
// whenever it arrives, unless the game was reset or rewound meanwhile.
func (s *Session) requestAdviceL(req tutor.Request) {
	if s.advisor == nil {
		return
	}
	epoch := s.epoch
	s.advice.Add(1)
	go func() {
		defer s.advice.Done()
		s.deliverAdvice(epoch, s.advisor.Advise(s.ctx, req))
	}()
}

func (s *Session) deliverAdvice(epoch uint64, advice tutor.Advice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		s.log.Debug().Str("request", advice.RequestID).Msg("dropping advice for an abandoned position")
		return
	}
	if advice.Degraded() {
		s.log.Warn().Err(advice.Err).Str("request", advice.RequestID).Msg("advice degraded")
		s.system("[ERROR] TUTOR_OFFLINE: " + advice.Err.Error())
	} else {
		s.transcript.Append(RoleAI, "[TUTOR] "+advice.Text)
	}
	s.renderL()
}

func (s *Session) parseMoveL(text string) *chess.Move {
	if m, err := (chess.AlgebraicNotation{}).Decode(s.game.Position(), text); err == nil {
		return m
	}
	return s.findUCIMoveL(strings.ToLower(text))
}

// findUCIMoveL finds the legal move written as e2e4 or e7e8q. A promotion
// without a piece becomes a queen.
func (s *Session) findUCIMoveL(text string) *chess.Move {
	valid := s.game.ValidMoves()
	for _, candidate := range []string{text, text + "q"} {
		for _, m := range valid {
			if m.String() == candidate {
				return m
			}
		}
		if len(text) != 4 {
			break
		}
	}
	return nil
}

// findMoveL is the legal move from→to, preferring a queen on promotion.
func (s *Session) findMoveL(from, to chess.Square) *chess.Move {
	var found *chess.Move
	for _, m := range s.game.ValidMoves() {
		if m.S1() != from || m.S2() != to {
			continue
		}
		if found == nil || m.Promo() == chess.Queen {
			found = m
		}
	}
	return found
}

func (s *Session) ownPieceL(sq chess.Square) bool {
	turn := s.game.Position().Turn()
	if s.engine != nil && turn != s.user.Chess() {
		return false
	}
	p := s.game.Position().Board().Piece(sq)
	return p != chess.NoPiece && p.Color() == turn
}

func (s *Session) selectL(sq chess.Square) {
	s.selecting = true
	s.lastSelection = sq
	s.highlights = make(map[chess.Square]bool)
	for _, m := range s.game.ValidMoves() {
		if m.S1() == sq {
			s.highlights[m.S2()] = true
		}
	}
}

func (s *Session) clearSelectionL() {
	s.selecting = false
	s.lastSelection = chess.NoSquare
	s.highlights = make(map[chess.Square]bool)
}

func (s *Session) gameOverL() bool {
	return s.game.Outcome() != chess.NoOutcome
}

func (s *Session) engineTurnL() bool {
	return s.engine != nil && !s.gameOverL() && s.game.Position().Turn() != s.user.Chess()
}

func (s *Session) phaseL() Phase {
	switch {
	case s.gameOverL():
		return PhaseGameOver
	case s.thinking:
		return PhaseAwaitingEngine
	default:
		return PhaseIdle
	}
}

func (s *Session) inCheckL() bool {
	moves := s.game.Moves()
	return len(moves) > 0 && moves[len(moves)-1].HasTag(chess.Check)
}

func (s *Session) statusL() string {
	turn := colorName(s.game.Position().Turn())
	switch {
	case s.game.Method() == chess.Checkmate:
		return fmt.Sprintf("GAME_OVER: %s_CHECKMATE", turn)
	case s.game.Outcome() == chess.Draw:
		return "GAME_OVER: DRAW"
	case s.inCheckL():
		return fmt.Sprintf("TURN: %s (IN_CHECK)", turn)
	}
	return "TURN: " + turn
}

func (s *Session) sanMovesL() []string {
	positions := s.game.Positions()
	moves := s.game.Moves()
	san := make([]string, 0, len(moves))
	for i, m := range moves {
		san = append(san, chess.AlgebraicNotation{}.Encode(positions[i], m))
	}
	return san
}

func (s *Session) openingL() string {
	if s.startFEN != "" || len(s.game.Moves()) == 0 {
		return ""
	}
	return ecoLookup(s.game.Moves())
}

func (s *Session) snapshotL() Snapshot {
	s.seq++
	pos := s.game.Position()
	turn := pos.Turn()

	board := pos.Board().SquareMap()
	check := chess.NoSquare
	if s.inCheckL() {
		for sq, p := range board {
			if p.Type() == chess.King && p.Color() == turn {
				check = sq
			}
		}
	}

	from, to := chess.NoSquare, chess.NoSquare
	if moves := s.game.Moves(); len(moves) > 0 {
		last := moves[len(moves)-1]
		from, to = last.S1(), last.S2()
	}

	targets := make(map[chess.Square]bool, len(s.highlights))
	for sq := range s.highlights {
		targets[sq] = true
	}

	var engineName string
	if n, ok := s.engine.(namer); ok {
		engineName = n.Name()
	}

	return Snapshot{
		Seq:         s.seq,
		Name:        s.name,
		Board:       board,
		Perspective: s.perspective,
		Turn:        turn,
		Selected:    s.lastSelection,
		Targets:     targets,
		LastFrom:    from,
		LastTo:      to,
		Check:       check,
		Phase:       s.phaseL(),
		Thinking:    s.thinking,
		Status:      s.statusL(),
		Eval:        "EVAL: " + s.eval.String(),
		Moves:       s.sanMovesL(),
		Opening:     s.openingL(),
		Engine:      engineName,
		Transcript:  s.transcript.Entries(),
	}
}

func (s *Session) renderL() {
	if s.renderer == nil {
		return
	}
	s.renderer.Render(s.snapshotL())
}
