package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	// Fixed simulation rate; ebiten's default TPS.
	ticksPerSecond = 60
	tickDt         = 1.0 / ticksPerSecond

	cannonLength = 48.0
	muzzleSpeed  = 900.0 // px/s at full power
	gravity      = 600.0 // px/s²

	blockCols = 8
	blockRows = 3
	blockW    = 56.0
	blockH    = 24.0
	blockGap  = 10.0

	shotsPerLevel = 10
)

var hudFace font.Face = basicfont.Face7x13

// block is one destructible target.
type block struct {
	x, y  float32
	alive bool
}

// projectile is a fired shot in flight.
type projectile struct {
	x, y   float64
	vx, vy float64
}

// ShellConfig configures the windowed game shell.
type ShellConfig struct {
	Width        int
	Height       int
	SettingsPath string
	Roadmap      *Roadmap // nil = DefaultRoadmap
	Log          zerolog.Logger
}

// Game is the ebiten shell hosting the gated-input core. It owns the
// per-frame tick: raw keyboard state is converted to pipeline calls,
// the pipeline and machines tick, and the toy ballistics react to the
// published domain events. Everything runs on ebiten's update
// goroutine; the settings watcher is drained here, never applied from
// its own goroutine.
type Game struct {
	log    zerolog.Logger
	clock  Clock
	hub    *Hub
	gate   *ActionGate
	pipe   *InputPipeline
	charge *ChargeMachine
	aim    *AimMachine

	settingsPath string
	watcher      *SettingsWatcher

	width, height int
	prevKeys      map[ebiten.Key]bool

	level     int
	shotsLeft int
	blocks    []block
	shots     []*projectile
}

// New builds the shell and all core components, starts the session in
// the roadmap's first stage, and begins watching the settings file.
func New(cfg ShellConfig) *Game {
	rm := cfg.Roadmap
	if rm == nil {
		rm = DefaultRoadmap()
	}

	opts := DefaultOptions()
	settings := LoadSettings(cfg.SettingsPath, cfg.Log)
	opts = settings.Apply(opts)

	clock := SystemClock{}
	hub := NewHub()
	gate := NewActionGate(hub, cfg.Log)
	gate.Initialize(rm)

	g := &Game{
		log:          cfg.Log.With().Str("component", "shell").Logger(),
		clock:        clock,
		hub:          hub,
		gate:         gate,
		pipe:         NewInputPipeline(gate, hub, clock, opts, cfg.Log),
		charge:       NewChargeMachine(gate, hub, clock, opts, cfg.Log),
		aim:          NewAimMachine(gate, hub, clock, opts, cfg.Log),
		settingsPath: cfg.SettingsPath,
		width:        cfg.Width,
		height:       cfg.Height,
		prevKeys:     make(map[ebiten.Key]bool),
	}
	g.pipe.SetDisabledActions(settings.Disabled())

	// Shell reactions to domain events. Stage jumps are free moves; the
	// actions that requested them were already gated in the pipeline.
	hub.Subscribe(EventShotFired, func(_ Event, payload any) {
		g.spawnShot(payload.(ShotFired).Power)
	})
	hub.Subscribe(EventPause, func(Event, any) {
		g.gate.SetStageByName(StagePaused)
	})
	hub.Subscribe(EventConfirm, func(Event, any) { g.onConfirm() })
	hub.Subscribe(EventRestart, func(Event, any) {
		g.startLevel(g.level)
		g.gate.SetStageByName(StageActiveGameplay)
	})
	hub.Subscribe(EventExit, func(Event, any) {
		g.gate.SetStageByName(StageMainMenu)
	})

	gate.StartSession("", nil)

	if cfg.SettingsPath != "" {
		w, err := WatchSettings(cfg.SettingsPath, cfg.Log)
		if err != nil {
			g.log.Warn().Err(err).Msg("settings watcher unavailable")
		} else {
			g.watcher = w
		}
	}
	return g
}

// onConfirm is the Enter-key reaction; its meaning depends on the stage
// the session was in when the confirm was accepted.
func (g *Game) onConfirm() {
	st := g.gate.CurrentStage()
	if st == nil {
		return
	}
	switch st.Name() {
	case StageMainMenu:
		g.level = 1
		g.startLevel(1)
		g.gate.SetStageByName(StageActiveGameplay)
	case StagePaused:
		g.gate.SetStageByName(StageActiveGameplay)
	case StageLevelComplete:
		g.level++
		g.startLevel(g.level)
		g.gate.SetStageByName(StageActiveGameplay)
	}
}

// startLevel lays out the block field and resets the shot budget.
func (g *Game) startLevel(level int) {
	g.shots = nil
	g.shotsLeft = shotsPerLevel
	g.blocks = g.blocks[:0]
	fieldW := float32(blockCols*(blockW+blockGap) - blockGap)
	x0 := (float32(g.width) - fieldW) / 2
	rows := blockRows
	if level > 1 {
		rows++ // later levels get one extra row
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < blockCols; c++ {
			g.blocks = append(g.blocks, block{
				x:     x0 + float32(c)*(blockW+blockGap),
				y:     60 + float32(r)*(blockH+blockGap),
				alive: true,
			})
		}
	}
}

// spawnShot converts the captured power into a projectile leaving the
// muzzle along the current aim angle.
func (g *Game) spawnShot(power float64) {
	if g.shotsLeft <= 0 {
		return
	}
	g.shotsLeft--
	angle := g.aim.CurrentAngle() * math.Pi / 180
	cx, cy := g.cannonPivot()
	speed := power * muzzleSpeed
	g.shots = append(g.shots, &projectile{
		x:  cx + math.Sin(angle)*cannonLength,
		y:  cy - math.Cos(angle)*cannonLength,
		vx: math.Sin(angle) * speed,
		vy: -math.Cos(angle) * speed,
	})
}

func (g *Game) cannonPivot() (float64, float64) {
	return float64(g.width) / 2, float64(g.height) - 40
}

// Update is the per-frame tick: settings reloads, raw input, pipeline
// and machine ticks, then ballistics.
func (g *Game) Update() error {
	if g.watcher != nil {
		select {
		case s := <-g.watcher.Updates():
			// Disabled actions apply live; timing overrides take effect
			// on the next launch because the machines copy Options at
			// construction.
			g.pipe.SetDisabledActions(s.Disabled())
		default:
		}
	}

	g.handleInput()
	g.pipe.Update()
	g.charge.Tick()
	g.aim.Tick()

	if st := g.gate.CurrentStage(); st != nil && st.Name() == StageActiveGameplay {
		g.stepBallistics()
	}
	return nil
}

// handleInput reads the keyboard and feeds the pipeline. Edge-triggered
// keys go through the prevKeys map; the aim keys deliberately repeat
// while held, with the pipeline's debounce turning the repeat into a
// steady nudge rate.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	down := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k]
	}
	pressed := func(k ebiten.Key) bool {
		return down(k) && !g.prevKeys[k]
	}
	released := func(k ebiten.Key) bool {
		return !down(k) && g.prevKeys[k]
	}

	// Directional aim: repeats while held.
	left := down(ebiten.KeyArrowLeft) || down(ebiten.KeyA)
	right := down(ebiten.KeyArrowRight) || down(ebiten.KeyD)
	switch {
	case left && !right:
		g.pipe.HandleDirection(DirLeft)
	case right && !left:
		g.pipe.HandleDirection(DirRight)
	default:
		g.aim.ReleaseDirection()
	}

	// Charge on space hold, fire on release.
	if pressed(ebiten.KeySpace) {
		g.pipe.HandleChargeStart()
	}
	if released(ebiten.KeySpace) {
		g.pipe.HandleRelease()
	}

	// Low-risk actions take the delayed path.
	if pressed(ebiten.KeyP) {
		g.pipe.HandleDelayed(ActionPause, EventPause)
	}
	if pressed(ebiten.KeyEnter) {
		g.pipe.HandleDelayed(g.confirmAction(), EventConfirm)
	}
	if pressed(ebiten.KeyR) {
		g.pipe.HandleDelayed(g.restartAction(), EventRestart)
	}
	if pressed(ebiten.KeyEscape) {
		g.pipe.HandleDelayed(g.exitAction(), EventExit)
	}
	if pressed(ebiten.KeyX) {
		g.gate.PerformAction(ActionCancelShot, func() { g.charge.Cancel() })
	}
	if pressed(ebiten.KeyF1) {
		if err := CopyStateReport(g.gate, g.pipe, g.charge, g.aim); err != nil {
			g.log.Warn().Err(err).Msg("clipboard copy failed")
		}
	}

	for k, v := range currentKeys {
		g.prevKeys[k] = v
	}
}

// confirmAction maps the Enter key to the action the current stage
// understands, so the gate judges the intent rather than the key.
func (g *Game) confirmAction() Action {
	st := g.gate.CurrentStage()
	if st == nil {
		return ActionConfirm
	}
	switch st.Name() {
	case StageMainMenu:
		return ActionStartGame
	case StagePaused:
		return ActionResume
	case StageLevelComplete:
		return ActionNextLevel
	default:
		return ActionConfirm
	}
}

func (g *Game) restartAction() Action {
	if st := g.gate.CurrentStage(); st != nil && st.Name() == StageLevelComplete {
		return ActionRetry
	}
	return ActionRestart
}

func (g *Game) exitAction() Action {
	st := g.gate.CurrentStage()
	if st == nil {
		return ActionQuit
	}
	switch st.Name() {
	case StageLevelComplete, StageGameOver:
		return ActionMainMenu
	default:
		return ActionQuit
	}
}

// stepBallistics advances projectiles and resolves block hits, then
// decides the level-complete / game-over stage handovers.
func (g *Game) stepBallistics() {
	live := g.shots[:0]
	for _, p := range g.shots {
		p.vy += gravity * tickDt
		p.x += p.vx * tickDt
		p.y += p.vy * tickDt
		if p.x < -20 || p.x > float64(g.width)+20 || p.y > float64(g.height)+20 {
			continue
		}
		hit := false
		for i := range g.blocks {
			b := &g.blocks[i]
			if !b.alive {
				continue
			}
			if p.x >= float64(b.x) && p.x <= float64(b.x)+blockW &&
				p.y >= float64(b.y) && p.y <= float64(b.y)+blockH {
				b.alive = false
				hit = true
				break
			}
		}
		if !hit {
			live = append(live, p)
		}
	}
	g.shots = live

	if g.aliveBlocks() == 0 {
		g.gate.SetStageByName(StageLevelComplete)
		return
	}
	if g.shotsLeft == 0 && len(g.shots) == 0 && !g.charge.Charging() && !g.pipe.Held() {
		g.gate.SetStageByName(StageGameOver)
	}
}

func (g *Game) aliveBlocks() int {
	n := 0
	for i := range g.blocks {
		if g.blocks[i].alive {
			n++
		}
	}
	return n
}

// Draw renders the scene for the current stage.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 16, G: 20, B: 30, A: 255})

	st := g.gate.CurrentStage()
	name := ""
	if st != nil {
		name = st.Name()
	}

	switch name {
	case StageMainMenu:
		g.drawCenteredText(screen, "C A N N O N A D E", g.height/2-30)
		g.drawCenteredText(screen, "Enter: start   F1: copy state report", g.height/2)
	default:
		g.drawWorld(screen)
		switch name {
		case StagePaused:
			g.drawCenteredText(screen, "PAUSED  (Enter: resume  R: restart  Esc: quit)", g.height/2)
		case StageLevelComplete:
			g.drawCenteredText(screen, "LEVEL CLEAR  (Enter: next  R: retry  Esc: menu)", g.height/2)
		case StageGameOver:
			g.drawCenteredText(screen, "OUT OF SHOTS  (R: restart  Esc: menu)", g.height/2)
		}
	}

	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("stage: %s  shots: %d  angle: %+.1f  power: %.2f",
			name, g.shotsLeft, g.aim.CurrentAngle(), g.charge.Power()),
		6, g.height-16)
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	// Blocks.
	for i := range g.blocks {
		b := &g.blocks[i]
		if !b.alive {
			continue
		}
		vector.FillRect(screen, b.x, b.y, blockW, blockH, color.RGBA{R: 180, G: 110, B: 60, A: 255}, false)
		vector.StrokeRect(screen, b.x, b.y, blockW, blockH, 1.0, color.RGBA{R: 90, G: 50, B: 25, A: 255}, false)
	}

	// Cannon barrel along the aim angle.
	cx, cy := g.cannonPivot()
	angle := g.aim.CurrentAngle() * math.Pi / 180
	mx := cx + math.Sin(angle)*cannonLength
	my := cy - math.Cos(angle)*cannonLength
	vector.FillCircle(screen, float32(cx), float32(cy), 14, color.RGBA{R: 90, G: 100, B: 120, A: 255}, false)
	vector.StrokeLine(screen, float32(cx), float32(cy), float32(mx), float32(my), 6.0, color.RGBA{R: 140, G: 150, B: 170, A: 255}, false)

	// Trajectory preview while charging: dots along the arc the current
	// power would produce.
	if g.charge.Charging() {
		g.drawTrajectoryPreview(screen, mx, my, angle, g.charge.Power())
		g.drawChargeBar(screen)
	}

	// Shots in flight.
	for _, p := range g.shots {
		vector.FillCircle(screen, float32(p.x), float32(p.y), 5, color.RGBA{R: 250, G: 220, B: 120, A: 255}, false)
	}
}

func (g *Game) drawTrajectoryPreview(screen *ebiten.Image, x, y, angle, power float64) {
	speed := power * muzzleSpeed
	vx := math.Sin(angle) * speed
	vy := -math.Cos(angle) * speed
	const step = 3 * tickDt
	for i := 0; i < 36; i++ {
		vy += gravity * step
		x += vx * step
		y += vy * step
		if y > float64(g.height) {
			break
		}
		vector.FillCircle(screen, float32(x), float32(y), 2, color.RGBA{R: 120, G: 200, B: 255, A: 160}, false)
	}
}

func (g *Game) drawChargeBar(screen *ebiten.Image) {
	const barW, barH = 160.0, 12.0
	x := (float32(g.width) - barW) / 2
	y := float32(g.height) - 20
	frac := g.charge.Power() // power range lies within [0,1]
	vector.StrokeRect(screen, x, y, barW, barH, 1.0, color.RGBA{R: 200, G: 200, B: 200, A: 255}, false)
	vector.FillRect(screen, x+1, y+1, (barW-2)*float32(frac), barH-2, color.RGBA{R: 255, G: 120, B: 80, A: 255}, false)
}

func (g *Game) drawCenteredText(screen *ebiten.Image, s string, y int) {
	bounds := text.BoundString(hudFace, s)
	x := (g.width - bounds.Dx()) / 2
	text.Draw(screen, s, hudFace, x, y, color.White)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Close releases the settings watcher.
func (g *Game) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}
