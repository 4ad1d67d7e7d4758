package engine

// EnergyClock - локальный тайм-энергетический счетчик игрока.
// Энергия непрерывно утекает, подъемы частично восполняют ее, простой
// ускоряет расход. Ноль - выбывание, ровно одно событие.
//
// Это мягкая локальная шкала: у нее нет ошибочных состояний, только
// терминальное пересечение нуля.
type EnergyClock struct {
	cfg Config

	level     float64
	idleTicks int
	depleted  bool

	// onDepleted вызывается строго один раз при пересечении нуля.
	onDepleted func()
}

// NewEnergyClock создает счетчик с полной шкалой.
func NewEnergyClock(cfg Config, onDepleted func()) *EnergyClock {
	return &EnergyClock{
		cfg:        cfg,
		level:      cfg.MaxEnergy,
		onDepleted: onDepleted,
	}
}

// Level возвращает текущий уровень энергии (0..MaxEnergy).
func (c *EnergyClock) Level() float64 {
	return c.level
}

// Depleted - true, если игрок уже выбыл по энергии.
func (c *EnergyClock) Depleted() bool {
	return c.depleted
}

// RegisterInput сбрасывает счетчик простоя. Вызывается на каждом
// зарегистрированном вводе (climb И turn - оба считаются активностью).
func (c *EnergyClock) RegisterInput() {
	c.idleTicks = 0
}

// ApplyClimbBonus начисляет фиксированную прибавку за успешный подъем,
// не выше потолка. После выбывания бонусы не действуют.
func (c *EnergyClock) ApplyClimbBonus(bonus float64) {
	if c.depleted {
		return
	}
	c.level += bonus
	if c.level > c.cfg.MaxEnergy {
		c.level = c.cfg.MaxEnergy
	}
}

// Tick продвигает счетчик на один шаг времени.
func (c *EnergyClock) Tick() {
	if c.depleted {
		return
	}

	c.idleTicks++

	c.level -= c.cfg.BaseDrain * c.idleMultiplier()
	if c.level <= 0 {
		c.level = 0
		c.depleted = true
		if c.onDepleted != nil {
			c.onDepleted()
		}
	}
}

// idleMultiplier - штраф за простой: в пределах грейса 1.0, дальше
// растет на IdlePenaltyStep за тик до потолка MaxIdleMultiplier.
func (c *EnergyClock) idleMultiplier() float64 {
	over := c.idleTicks - c.cfg.IdleGraceTicks
	if over <= 0 {
		return 1.0
	}
	m := 1.0 + float64(over)*c.cfg.IdlePenaltyStep
	if m > c.cfg.MaxIdleMultiplier {
		return c.cfg.MaxIdleMultiplier
	}
	return m
}
