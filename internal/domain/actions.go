package domain

import "strings"

// StepAction - Внутренний числовой идентификатор игрового ввода
type StepAction uint8

const (
	ActionUnknown StepAction = iota
	ActionClimb
	ActionTurn
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]StepAction{
	"CLIMB": ActionClimb,
	"TURN":  ActionTurn,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[StepAction]string{
	ActionClimb: "CLIMB",
	ActionTurn:  "TURN",
}

// ParseAction конвертирует строку из JSON в StepAction
func ParseAction(s string) StepAction {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a StepAction) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}
