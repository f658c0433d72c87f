package domain

import "fmt"

// Тексты, которые видит пользователь при неудачной загрузке.
const (
	MessageNoFileSelected = "No file selected. Please select a file."
	MessageParseFailure   = "Failed to parse file. Please check the file format."
	MessageGeneric        = "Something went wrong. Please try again."
)

// LoadStatus — короткое имя состояния для внешних представлений.
type LoadStatus string

const (
	StatusEmpty  LoadStatus = "empty"
	StatusLoaded LoadStatus = "loaded"
	StatusFailed LoadStatus = "failed"
)

// LoadState — результат последней попытки загрузки: Empty, Loaded или Failed.
type LoadState interface {
	Status() LoadStatus
	isLoadState()
}

// Empty — загрузка еще не выполнялась.
type Empty struct{}

func (Empty) Status() LoadStatus { return StatusEmpty }
func (Empty) isLoadState()       {}

// Loaded — документ успешно разобран.
type Loaded struct {
	AttemptID string
	Filename  string
	// Digest — SHA256 исходных байт, по нему кешируются отчеты.
	Digest string
	Chat   *ExportedChat
}

func (Loaded) Status() LoadStatus { return StatusLoaded }
func (Loaded) isLoadState()       {}

// Failed — попытка загрузки завершилась ошибкой.
type Failed struct {
	AttemptID string
	Err       LoadError
}

func (Failed) Status() LoadStatus { return StatusFailed }
func (Failed) isLoadState()       {}

// LoadError — закрытое множество ошибок загрузки.
type LoadError interface {
	error
	Kind() string
	isLoadError()
}

// NoFileSelected — пользователь не выбрал файл.
type NoFileSelected struct{}

func (NoFileSelected) Error() string { return "no file selected" }
func (NoFileSelected) Kind() string  { return "no_file_selected" }
func (NoFileSelected) isLoadError()  {}

// ParseFailure — содержимое не является документом экспорта.
type ParseFailure struct {
	Filename string
	Reason   string
}

func (e ParseFailure) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.Filename, e.Reason)
}
func (ParseFailure) Kind() string { return "parse_failure" }
func (ParseFailure) isLoadError() {}

// ReadFailure — файл выбран, но прочитать его не удалось.
type ReadFailure struct {
	Filename string
	Reason   string
}

func (e ReadFailure) Error() string {
	return fmt.Sprintf("failed to read %s: %s", e.Filename, e.Reason)
}
func (ReadFailure) Kind() string { return "read_failure" }
func (ReadFailure) isLoadError() {}

// UserMessage переводит ошибку загрузки в текст для пользователя.
func UserMessage(err LoadError) string {
	switch err.(type) {
	case NoFileSelected:
		return MessageNoFileSelected
	case ParseFailure:
		return MessageParseFailure
	default:
		return MessageGeneric
	}
}

// View — экран, на котором должен находиться пользователь.
type View string

const (
	ViewUpload  View = "upload"
	ViewResults View = "results"
)

// Path возвращает маршрут экрана.
func (v View) Path() string {
	if v == ViewResults {
		return "/analytics"
	}
	return "/"
}

// ViewFor вычисляет экран по состоянию. Результат не кешируется.
func ViewFor(state LoadState) View {
	if _, ok := state.(Loaded); ok {
		return ViewResults
	}
	return ViewUpload
}
