package models

import "fmt"

// DiseaseClass 9 分类疾病标签（封闭集合 0..8）
type DiseaseClass int

const (
	CoronaryHeartDisease DiseaseClass = 0
	Stroke               DiseaseClass = 1
	Diabetes             DiseaseClass = 2
	Hypertension         DiseaseClass = 3
	Arrhythmia           DiseaseClass = 4
	MetabolicSyndrome    DiseaseClass = 5
	NeurologicalDisorder DiseaseClass = 6
	Epilepsy             DiseaseClass = 7
	NoSignificantDisease DiseaseClass = 8
)

// NumDiseaseClasses 疾病类别数量
const NumDiseaseClasses = 9

var diseaseNames = [NumDiseaseClasses]string{
	"Coronary Heart Disease",
	"Stroke",
	"Diabetes",
	"Hypertension",
	"Arrhythmia",
	"Metabolic Syndrome",
	"General Neurological Disorder",
	"Epilepsy",
	"No Significant Disease",
}

// Valid 是否在 0..8 范围内
func (c DiseaseClass) Valid() bool {
	return c >= 0 && int(c) < NumDiseaseClasses
}

// Name 疾病显示名称
func (c DiseaseClass) Name() string {
	if !c.Valid() {
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
	return diseaseNames[c]
}

func (c DiseaseClass) String() string {
	return c.Name()
}

// ParseDiseaseClass 将模型输出的整数标签转换为疾病类别
// 超出 0..8 视为契约违例
func ParseDiseaseClass(label int) (DiseaseClass, error) {
	c := DiseaseClass(label)
	if !c.Valid() {
		return 0, &InvalidClassError{Label: label}
	}
	return c, nil
}

// AllDiseaseClasses 按编号顺序返回全部类别
func AllDiseaseClasses() []DiseaseClass {
	out := make([]DiseaseClass, NumDiseaseClasses)
	for i := range out {
		out[i] = DiseaseClass(i)
	}
	return out
}
