package processing

import "errors"

// ErrConfiguration — процессор не может быть сконструирован из данной
// конфигурации. Валит процесс на старте.
var ErrConfiguration = errors.New("processing: invalid configuration")
