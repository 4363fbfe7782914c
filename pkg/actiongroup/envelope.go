package actiongroup

import (
	"bytes"
	"encoding/json"

	"github.com/wilhg/actionskills/pkg/errmodel"
)

// MessageVersion is the only envelope version agents accept.
const MessageVersion = "1.0"

type TextBody struct {
	Body string `json:"body"`
}

type ResponseBody struct {
	TEXT TextBody `json:"TEXT"`
}

type FunctionResponse struct {
	ResponseBody ResponseBody `json:"responseBody"`
}

type Response struct {
	ActionGroup      string           `json:"actionGroup"`
	Function         string           `json:"function"`
	FunctionResponse FunctionResponse `json:"functionResponse"`
}

// SuccessEnvelope wraps a serialized result.
type SuccessEnvelope struct {
	MessageVersion          string          `json:"messageVersion"`
	Response                Response        `json:"response"`
	SessionAttributes       json.RawMessage `json:"sessionAttributes"`
	PromptSessionAttributes json.RawMessage `json:"promptSessionAttributes"`
}

// FailureEnvelope is the alternate top-level shape used for every failure.
// It deliberately carries no response/TEXT wrapping.
type FailureEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
}

// Success serializes result as the text body and echoes the event's routing and sessions.
func Success(ev Event, result any) (SuccessEnvelope, error) {
	body, err := Marshal(result)
	if err != nil {
		return SuccessEnvelope{}, err
	}
	return SuccessEnvelope{
		MessageVersion: MessageVersion,
		Response: Response{
			ActionGroup: ev.ActionGroup,
			Function:    ev.Function,
			FunctionResponse: FunctionResponse{
				ResponseBody: ResponseBody{TEXT: TextBody{Body: string(body)}},
			},
		},
		SessionAttributes:       ev.SessionAttributes,
		PromptSessionAttributes: ev.PromptSessionAttributes,
	}, nil
}

// Failure maps err to its status and message.
func Failure(err error) FailureEnvelope {
	ce := errmodel.From(err)
	if ce == nil {
		ce = errmodel.System("internal", "Internal error: unknown", nil, nil)
	}
	return FailureEnvelope{StatusCode: errmodel.HTTPStatus(ce), Error: ce.Message}
}

// Marshal encodes v without HTML escaping so echoed values stay as the caller sent them.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
