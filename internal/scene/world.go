package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultPlayerID = 1
	DefaultSpeed    = 2.5
)

var DefaultSpawn = mgl64.Vec3{0, 0.5, 0}

type Player struct {
	ID       int
	Position mgl64.Vec3
	Speed    float64
}

// World owns every player and an optional designation of the main one. The
// main id is only a lookup key; it may name a player that does not exist.
type World struct {
	players map[int]*Player
	mainID  int
	hasMain bool
}

func NewWorld() *World {
	return &World{players: make(map[int]*Player)}
}

// NewDefaultWorld spawns the single main player used at startup.
func NewDefaultWorld() *World {
	w := NewWorld()
	if err := w.Spawn(Player{ID: DefaultPlayerID, Position: DefaultSpawn, Speed: DefaultSpeed}); err != nil {
		panic(fmt.Sprintf("scene: default player: %v", err))
	}
	w.SetMain(DefaultPlayerID)
	return w
}

// Spawn adds or replaces the player with p.ID.
func (w *World) Spawn(p Player) error {
	if p.Speed <= 0 {
		return fmt.Errorf("player %d: speed must be positive, got %v", p.ID, p.Speed)
	}
	player := p
	w.players[p.ID] = &player
	return nil
}

// Despawn removes a player. A main designation pointing at it is kept and
// simply stops resolving.
func (w *World) Despawn(id int) {
	delete(w.players, id)
}

func (w *World) Player(id int) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

func (w *World) SetMain(id int) {
	w.mainID = id
	w.hasMain = true
}

func (w *World) ClearMain() {
	w.mainID = 0
	w.hasMain = false
}

func (w *World) MainID() (int, bool) {
	return w.mainID, w.hasMain
}

// Main resolves the main designation. It reports false when nothing is
// designated or the designated player is gone.
func (w *World) Main() (*Player, bool) {
	if !w.hasMain {
		return nil, false
	}
	return w.Player(w.mainID)
}

type Snapshot struct {
	MainID  int
	HasMain bool
	Players []Player
}

func (w *World) Snapshot() Snapshot {
	players := make([]Player, 0, len(w.players))
	for _, p := range w.players {
		players = append(players, *p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return Snapshot{
		MainID:  w.mainID,
		HasMain: w.hasMain,
		Players: players,
	}
}

func (s Snapshot) String() string {
	infos := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		marker := ""
		if s.HasMain && p.ID == s.MainID {
			marker = "*"
		}
		infos = append(infos, fmt.Sprintf("%sID:%d (%.2f, %.2f, %.2f) speed:%.2f",
			marker, p.ID, p.Position.X(), p.Position.Y(), p.Position.Z(), p.Speed))
	}
	main := "none"
	if s.HasMain {
		main = fmt.Sprintf("%d", s.MainID)
	}
	return fmt.Sprintf("Snapshot [Main: %s] | [Players(%d): [%s]]", main, len(s.Players), strings.Join(infos, ", "))
}
