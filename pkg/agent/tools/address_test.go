package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wilhg/actionskills/pkg/agent"
)

const paulistaCEP = `{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP"}`

func fakeViaCEP(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/01310-100/json/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, paulistaCEP)
	})
	mux.HandleFunc("/ws/99999999/json/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"erro": true}`)
	})
	mux.HandleFunc("/ws/abc/json/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("<h1>Bad Request</h1>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestAddressTool_ReturnsDocumentAsIs(t *testing.T) {
	tool := AddressTool{http: http.DefaultClient, baseURL: fakeViaCEP(t)}
	out, err := tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"cep": "01310-100"}})
	require.NoError(t, err)
	raw, ok := out.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, paulistaCEP, string(raw))
}

func TestAddressTool_PassesThroughErroShape(t *testing.T) {
	tool := AddressTool{http: http.DefaultClient, baseURL: fakeViaCEP(t)}
	out, err := tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"cep": "99999999"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"erro":true}`, toJSON(t, out))
}

func TestAddressTool_Failures(t *testing.T) {
	tool := AddressTool{http: http.DefaultClient, baseURL: fakeViaCEP(t)}

	_, err := tool.Invoke(context.Background(), agent.Call{Args: agent.Args{}})
	requireStatus(t, err, http.StatusBadRequest, "Missing required parameter: cep")

	_, err = tool.Invoke(context.Background(), agent.Call{Args: agent.Args{"cep": "abc"}})
	requireStatus(t, err, http.StatusBadRequest, "ViaCEP API error: <h1>Bad Request</h1>")
}
