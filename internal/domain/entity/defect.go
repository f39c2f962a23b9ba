package entity

import (
	"fmt"
	"image"
	"math"
)

// DefectClass класс состояния панели, который возвращает классификатор
type DefectClass int

const (
	DefectClean  DefectClass = iota // Чистая панель
	DefectCracks                    // Трещины
	DefectDust                      // Загрязнение
)

var defectClassNames = [...]string{"clean", "cracks", "dust"}

// DefectClassFromIndex переводит индекс класса модели в DefectClass.
func DefectClassFromIndex(idx int) (DefectClass, error) {
	if idx < 0 || idx >= len(defectClassNames) {
		return 0, fmt.Errorf("unknown defect class index %d", idx)
	}
	return DefectClass(idx), nil
}

func (c DefectClass) String() string {
	if c < 0 || int(c) >= len(defectClassNames) {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return defectClassNames[c]
}

// RequiresSerialScan сообщает, нужно ли искать серийный номер на кадре с этим классом.
func (c DefectClass) RequiresSerialScan() bool {
	return c == DefectCracks || c == DefectDust
}

// BoundingBox прямоугольник в координатах кадра
type BoundingBox struct {
	X1 int // левый верхний угол
	Y1 int
	X2 int // правый нижний угол
	Y2 int
}

func (b BoundingBox) Width() int  { return b.X2 - b.X1 }
func (b BoundingBox) Height() int { return b.Y2 - b.Y1 }

// Rect возвращает прямоугольник в виде image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Detection результат классификатора для одной области кадра
type Detection struct {
	Class      DefectClass
	Confidence float64 // 0..1
	Box        BoundingBox
}

// Label формирует подпись "класс уверенность" с уверенностью, округлённой вниз до сотых.
func (d Detection) Label() string {
	// Предварительное округление убирает погрешность вида 0.29*100 = 28.999...
	conf := math.Floor(math.Round(d.Confidence*1e6)/1e4) / 100
	return fmt.Sprintf("%s %.2f", d.Class, conf)
}
