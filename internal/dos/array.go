package dos

// Array is a row-major 2-D raster buffer.
type Array struct {
	Rows, Cols int
	Data       []float64
}

func NewArray(rows, cols int) Array {
	return Array{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func (a Array) At(y, x int) float64 {
	return a.Data[y*a.Cols+x]
}

func (a Array) Len() int {
	return len(a.Data)
}

// Map returns a new array of the same shape with fn applied to every pixel.
func (a Array) Map(fn func(float64) float64) Array {
	out := NewArray(a.Rows, a.Cols)
	for i, v := range a.Data {
		out.Data[i] = fn(v)
	}
	return out
}

// Float32 converts the data for writers that store single precision.
func (a Array) Float32() []float32 {
	out := make([]float32, len(a.Data))
	for i, v := range a.Data {
		out[i] = float32(v)
	}
	return out
}
