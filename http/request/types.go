package request

type (
	Request struct {
		Url     string
		Method  string
		Headers []Headers
		Payload interface{}
	}

	Headers struct {
		Key   string
		Value string
	}
)
