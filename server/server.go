/*
Package server encapsulates http server entry points. It publishes the
in-process mediator: the message endpoint where the other agents post their
Forward envelopes, and the JSON control API the edge agents use.
*/
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/findy-network/findy-didexchange/agent/agency"
	"github.com/findy-network/findy-didexchange/agent/trans"
	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// maxBodySize limits the incoming messages.
const maxBodySize = 4 << 20

// NewRouter returns the handlers of the agency.
func NewRouter(a *agency.Agency) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(agency.PathMsg, protocolTransport(a)).Methods(http.MethodPost)

	r.HandleFunc(agency.PathInfo, jsonHandler(func(r *http.Request) (any, error) {
		return a.Info(r.Context())
	})).Methods(http.MethodPost, http.MethodGet)

	r.HandleFunc(agency.PathCreateAgent, jsonHandler(func(r *http.Request) (any, error) {
		var req agency.CreateAgentReq
		if err := readJSON(r, &req); err != nil {
			return nil, err
		}
		if req.PwDID == "" || req.PwVK == "" {
			return nil, core.Errorf(core.KindInvalidOption, "pairwise DID and verkey are mandatory")
		}
		did, vk, err := a.CreatePairwiseAgent(r.Context(), req.PwDID, req.PwVK)
		return agency.CreateAgentResp{AgentDID: did, AgentVK: vk}, err
	})).Methods(http.MethodPost)

	r.HandleFunc(agency.PathGetMessages, jsonHandler(func(r *http.Request) (any, error) {
		var req agency.GetMessagesReq
		if err := readJSON(r, &req); err != nil {
			return nil, err
		}
		msgs, err := a.GetMessages(r.Context(), req.AgentDID, req.Status, req.UIDs)
		return agency.GetMessagesResp{Messages: msgs}, err
	})).Methods(http.MethodPost)

	r.HandleFunc(agency.PathUpdateStatus, jsonHandler(func(r *http.Request) (any, error) {
		var req agency.UpdateStatusReq
		if err := readJSON(r, &req); err != nil {
			return nil, err
		}
		return struct{}{}, a.UpdateMessageStatus(r.Context(), req.AgentDID, req.StatusCode, req.UIDs)
	})).Methods(http.MethodPost)

	r.HandleFunc(agency.PathDeleteAgent, jsonHandler(func(r *http.Request) (any, error) {
		var req agency.DeleteAgentReq
		if err := readJSON(r, &req); err != nil {
			return nil, err
		}
		return struct{}{}, a.DeleteConnection(r.Context(), req.AgentDID)
	})).Methods(http.MethodPost)

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		glog.V(5).Info("/version requested")
		_, _ = w.Write([]byte(utils.Version))
	}).Methods(http.MethodGet)

	return r
}

// StartHTTPServer starts the http server. The function blocks when it
// succeeds.
func StartHTTPServer(a *agency.Agency, serverPort uint) error {
	info, _ := a.Info(context.Background())
	glog.V(1).Infof("HTTP Server on port: %v, agency %s endpoint %s",
		serverPort, info.DID, info.Endpoint)

	server := http.Server{
		Addr:    fmt.Sprintf(":%v", serverPort),
		Handler: NewRouter(a),
	}
	return server.ListenAndServe()
}

// BuildHostAddr returns the address the world sees from the host name and
// the port.
func BuildHostAddr(scheme, host string, hostPort uint) string {
	if hostPort != 80 {
		return fmt.Sprintf("%s://%s:%v", scheme, host, hostPort)
	}
	return fmt.Sprintf("%s://%s", scheme, host)
}

func errorResponse(w http.ResponseWriter, status int, err error) {
	glog.V(2).Infof("Returning %d: %v", status, err)
	http.Error(w, err.Error(), status)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, agency.ErrUnknownAgent):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAgencyResponse),
		errors.Is(err, core.ErrInvalidOption),
		errors.Is(err, core.ErrInvalidJSON),
		errors.Is(err, agency.ErrNotForUs):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func protocolTransport(a *agency.Agency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer err2.Catch(func(err error) error {
			glog.Error("transport error:", err)
			errorResponse(w, statusOf(err), err)
			return nil
		})

		glog.V(1).Infoln("===== Aries TRANSPORT =====", r.Method, r.URL.Path)
		data := try.To1(io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize)))
		try.To(a.Receive(data))

		w.WriteHeader(http.StatusAccepted)
	}
}

func readJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		return core.Wrap(core.KindInvalidJSON, err, "request body")
	}
	return nil
}

func jsonHandler(h func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h(r)
		if err != nil {
			errorResponse(w, statusOf(err), err)
			return
		}
		w.Header().Set("Content-Type", trans.ContentTypeJSON)
		if err := json.NewEncoder(w).Encode(res); err != nil {
			glog.Errorln("encode response:", err)
		}
	}
}
