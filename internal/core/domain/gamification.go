package domain

import "time"

// Level is one row of the fixed level table.
type Level struct {
	Level      int    `json:"level"`
	XPRequired int    `json:"xpRequired"`
	Name       string `json:"name"`
}

// Levels is ascending by XPRequired. LevelForXP relies on that order.
var Levels = []Level{
	{Level: 1, XPRequired: 0, Name: "Iniciante"},
	{Level: 2, XPRequired: 100, Name: "Aprendiz"},
	{Level: 3, XPRequired: 250, Name: "Júnior"},
	{Level: 4, XPRequired: 500, Name: "Pleno"},
	{Level: 5, XPRequired: 1000, Name: "Sênior"},
	{Level: 6, XPRequired: 2000, Name: "Especialista"},
	{Level: 7, XPRequired: 3500, Name: "Mestre"},
	{Level: 8, XPRequired: 5500, Name: "Grão-Mestre"},
	{Level: 9, XPRequired: 8000, Name: "Lenda"},
	{Level: 10, XPRequired: 12000, Name: "Mito"},
}

// LevelForXP returns the highest level whose requirement is met.
func LevelForXP(xp int) Level {
	current := Levels[0]
	for _, l := range Levels {
		if l.XPRequired > xp {
			break
		}
		current = l
	}
	return current
}

// LevelProgress describes how far a technician is into the current level.
type LevelProgress struct {
	Current    Level   `json:"current"`
	Next       *Level  `json:"next"`
	Percentage float64 `json:"percentage"`
	XPToNext   int     `json:"xpToNext"`
}

// ProgressForXP computes level progress clamped to [0, 100]. At the top
// level progress is 100 with no XP left to earn.
func ProgressForXP(xp int) LevelProgress {
	current := LevelForXP(xp)
	if current.Level >= Levels[len(Levels)-1].Level {
		return LevelProgress{Current: current, Percentage: 100}
	}

	next := Levels[current.Level]
	span := float64(next.XPRequired - current.XPRequired)
	pct := float64(xp-current.XPRequired) / span * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return LevelProgress{
		Current:    current,
		Next:       &next,
		Percentage: pct,
		XPToNext:   max(0, next.XPRequired-xp),
	}
}

// BadgeRarity grades how hard a badge is to earn.
type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

// Badge ids.
const (
	BadgeFirstResolution = "first_resolution"
	BadgeSLAMaster       = "sla_master"
	BadgeSpeedDemon      = "speed_demon"
	BadgeWeeklyWarrior   = "weekly_warrior"
	BadgeMarathon        = "marathon"
	BadgePerfectWeek     = "perfect_week"
	BadgeCentury         = "century"
	BadgeVersatile       = "versatile"
	BadgeCriticalHero    = "critical_hero"
	BadgeConsistency     = "consistency"
)

// Badge is a static achievement definition.
type Badge struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Rarity      BadgeRarity `json:"rarity"`
}

// Badges lists the ten achievements in display order.
var Badges = []Badge{
	{BadgeFirstResolution, "Primeira Solução", "Resolveu o primeiro chamado", RarityCommon},
	{BadgeSLAMaster, "Mestre do SLA", "95% ou mais de cumprimento de SLA com ao menos 20 chamados", RarityRare},
	{BadgeSpeedDemon, "Relâmpago", "Tempo médio de solução de até 1 hora nos últimos 30 dias", RarityRare},
	{BadgeWeeklyWarrior, "Guerreiro da Semana", "10 chamados resolvidos nos últimos 7 dias", RarityCommon},
	{BadgeMarathon, "Maratonista", "100 chamados resolvidos nos últimos 90 dias", RarityEpic},
	{BadgePerfectWeek, "Semana Perfeita", "Ao menos 5 chamados resolvidos em 7 dias sem estourar o SLA", RarityEpic},
	{BadgeCentury, "Centenário", "100 chamados resolvidos no total", RarityEpic},
	{BadgeVersatile, "Versátil", "Chamados resolvidos em 5 categorias diferentes", RarityRare},
	{BadgeCriticalHero, "Herói dos Críticos", "10 chamados de prioridade alta ou crítica resolvidos dentro do SLA em 30 dias", RarityLegendary},
	{BadgeConsistency, "Consistência", "Três meses seguidos com 90% ou mais de cumprimento de SLA", RarityLegendary},
}

// BadgeByID looks a definition up.
func BadgeByID(id string) (Badge, bool) {
	for _, b := range Badges {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// EarnedBadge records when a badge was awarded.
type EarnedBadge struct {
	ID       string    `json:"id"`
	EarnedAt time.Time `json:"earnedAt"`
}

// GamificationProfile is the persisted per-technician state.
type GamificationProfile struct {
	TechnicianID string        `json:"technicianId"`
	TotalXP      int           `json:"totalXP"`
	CurrentLevel int           `json:"currentLevel"`
	Badges       []EarnedBadge `json:"badges"`
	LastUpdated  time.Time     `json:"lastUpdated"`
}

// NewGamificationProfile returns the zero-value profile for a technician.
func NewGamificationProfile(technicianID string) *GamificationProfile {
	return &GamificationProfile{
		TechnicianID: technicianID,
		CurrentLevel: Levels[0].Level,
		Badges:       []EarnedBadge{},
	}
}

// HasBadge reports whether the profile already holds a badge.
func (p *GamificationProfile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// AwardBadges appends the badges the profile does not hold yet and returns
// the ids actually added. Held badges are never re-awarded.
func (p *GamificationProfile) AwardBadges(ids []string, at time.Time) []string {
	added := make([]string, 0, len(ids))
	for _, id := range ids {
		if p.HasBadge(id) {
			continue
		}
		p.Badges = append(p.Badges, EarnedBadge{ID: id, EarnedAt: at})
		added = append(added, id)
	}
	return added
}

// GamificationResult is the outcome of one evaluation.
type GamificationResult struct {
	Profile       GamificationProfile `json:"profile"`
	ComputedXP    int                 `json:"computedXP"`
	XPEarned      int                 `json:"xpEarned"`
	NewBadges     []Badge             `json:"newBadges"`
	LeveledUp     bool                `json:"leveledUp"`
	PreviousLevel int                 `json:"previousLevel"`
	Progress      LevelProgress       `json:"progress"`
	Persisted     bool                `json:"persisted"`
}
