package broken

// Broken cannot be mapped.
type Broken struct {
	Ch chan int `sqlrecord:"ch"`
}
