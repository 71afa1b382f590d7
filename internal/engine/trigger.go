package engine

import (
	"fmt"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/anim"
	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

// TriggerKind names a gameplay event the engine reacts to.
type TriggerKind uint8

const (
	TriggerCharacterMove TriggerKind = iota + 1
	TriggerItemUse
	TriggerBuildingAction
	TriggerTravelStart
	TriggerTravelComplete
	TriggerGoldTransaction
	TriggerLevelUp
	TriggerTradeComplete
	TriggerWeatherChange
	TriggerScreenShake
	TriggerProjectile
	TriggerCancel
	TriggerCancelTarget
)

var triggerNames = map[TriggerKind]string{
	TriggerCharacterMove:   "character_move",
	TriggerItemUse:         "item_use",
	TriggerBuildingAction:  "building_action",
	TriggerTravelStart:     "travel_start",
	TriggerTravelComplete:  "travel_complete",
	TriggerGoldTransaction: "gold_transaction",
	TriggerLevelUp:         "level_up",
	TriggerTradeComplete:   "trade_complete",
	TriggerWeatherChange:   "weather_change",
	TriggerScreenShake:     "screen_shake",
	TriggerProjectile:      "projectile",
	TriggerCancel:          "cancel",
	TriggerCancelTarget:    "cancel_target",
}

func (k TriggerKind) String() string {
	if s, ok := triggerNames[k]; ok {
		return s
	}
	return fmt.Sprintf("trigger(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k TriggerKind) MarshalText() ([]byte, error) {
	if _, ok := triggerNames[k]; !ok {
		return nil, fmt.Errorf("unknown trigger kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TriggerKind) UnmarshalText(b []byte) error {
	for kind, name := range triggerNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown trigger kind %q", b)
}

// Trigger is one inbound gameplay event. Only the fields relevant to Kind
// are read.
type Trigger struct {
	Kind TriggerKind `json:"kind"`

	Target fx.Handle `json:"target,omitempty"`
	Origin fx.Vec2   `json:"origin"`
	From   fx.Vec2   `json:"from"`
	To     fx.Vec2   `json:"to"`

	Speed   SpeedKind `json:"speed,omitempty"`   // character_move
	Item    string    `json:"item,omitempty"`    // item_use
	Action  string    `json:"action,omitempty"`  // building_action, cancel_target
	Level   int       `json:"level,omitempty"`   // building_action
	Amount  int       `json:"amount,omitempty"`  // gold_transaction
	Success bool      `json:"success,omitempty"` // trade_complete

	Weather   fx.WeatherKind `json:"weather,omitempty"`
	Intensity float64        `json:"intensity,omitempty"`
	// DurationMS is the screen shake length.
	DurationMS int64 `json:"duration_ms,omitempty"`

	ID anim.ID `json:"id,omitempty"` // cancel
}

// Post queues t for the next Tick. It never blocks: when the mailbox is
// full the trigger is dropped, counted and false is returned. Safe for
// concurrent use.
func (e *Engine) Post(t Trigger) bool {
	select {
	case e.mailbox <- t:
		return true
	default:
		e.dropped.Add(1)
		return false
	}
}

// Dispatch applies t immediately at the latest tick time, or the engine
// clock's time before the first tick. It must be called from the goroutine
// that calls Tick.
func (e *Engine) Dispatch(t Trigger) {
	now := e.now()
	e.applySettings(now, e.settings.Settings())
	e.dispatch(now, t)
}

func (e *Engine) dispatch(now time.Time, t Trigger) {
	switch t.Kind {
	case TriggerCharacterMove:
		e.characterMove(now, t.Target, t.From, t.To, t.Speed)
	case TriggerItemUse:
		e.itemUse(now, t.Target, t.Item)
	case TriggerBuildingAction:
		e.buildingAction(now, t.Target, t.Action, t.Level)
	case TriggerTravelStart:
		e.travelStart(now, t.Target, t.From, t.To)
	case TriggerTravelComplete:
		e.travelComplete(now, t.Target)
	case TriggerGoldTransaction:
		e.goldTransaction(now, t.Origin, t.Amount)
	case TriggerLevelUp:
		e.levelUp(now, t.Origin)
	case TriggerTradeComplete:
		e.tradeComplete(now, t.Origin, t.Success)
	case TriggerWeatherChange:
		e.weatherChange(now, t.Weather, t.Intensity)
	case TriggerScreenShake:
		e.screenShake(now, t.Intensity, time.Duration(t.DurationMS)*time.Millisecond)
	case TriggerProjectile:
		e.projectile(now, t.From, t.To)
	case TriggerCancel:
		e.anims.Cancel(t.ID)
	case TriggerCancelTarget:
		e.anims.CancelTarget(t.Target, t.Action)
	default:
		e.log.Warn("ignoring trigger", "kind", t.Kind, "err", fx.ErrUnknownKind)
	}
}
