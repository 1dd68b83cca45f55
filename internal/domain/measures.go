package domain

import "math"

// Метрики дублирования.
const (
	MetricDuplicatedBlocks  = "duplicated_blocks"
	MetricDuplicatedLines   = "duplicated_lines"
	MetricDuplicatedFiles   = "duplicated_files"
	MetricDuplicatedDensity = "duplicated_lines_density"
	MetricLines             = "lines"
)

// DuplicationMeasure - показатели дублирования одного компонента.
type DuplicationMeasure struct {
	Lines            int     `json:"lines"`
	DuplicatedLines  int     `json:"duplicated_lines"`
	DuplicatedBlocks int     `json:"duplicated_blocks"`
	DuplicatedFiles  int     `json:"duplicated_files"`
	Density          float64 `json:"duplicated_lines_density"`
}

// ComputeDensity пересчитывает плотность дублирования (в процентах, одна цифра после точки).
func (m *DuplicationMeasure) ComputeDensity() {
	if m.Lines <= 0 {
		m.Density = 0
		return
	}
	d := 100 * float64(m.DuplicatedLines) / float64(m.Lines)
	m.Density = math.Round(d*10) / 10
}

// Add добавляет показатели дочернего компонента.
func (m *DuplicationMeasure) Add(child DuplicationMeasure) {
	m.Lines += child.Lines
	m.DuplicatedLines += child.DuplicatedLines
	m.DuplicatedBlocks += child.DuplicatedBlocks
	m.DuplicatedFiles += child.DuplicatedFiles
}

// AsMap возвращает показатели в виде metric → value.
func (m DuplicationMeasure) AsMap() map[string]float64 {
	return map[string]float64{
		MetricLines:             float64(m.Lines),
		MetricDuplicatedLines:   float64(m.DuplicatedLines),
		MetricDuplicatedBlocks:  float64(m.DuplicatedBlocks),
		MetricDuplicatedFiles:   float64(m.DuplicatedFiles),
		MetricDuplicatedDensity: m.Density,
	}
}

// DuplicationMeasures - показатели дублирования по ключу компонента.
type DuplicationMeasures map[string]DuplicationMeasure
