package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"i4.energy/across/motiongw/ascii"
	"i4.energy/across/motiongw/controller"
)

// Server handles incoming HTTP requests for driving the configured actuator
// device
type Server struct {
	Logger *slog.Logger
	Device *controller.Device
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /move", s.handleMove)
	mux.HandleFunc("POST /command", s.handleCommand)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

// ReplyResponse is the JSON view of a device reply.
type ReplyResponse struct {
	Device  int    `json:"device"`
	Axis    int    `json:"axis"`
	Flag    string `json:"flag"`
	Status  string `json:"status"`
	Warning string `json:"warning"`
	Data    string `json:"data"`
}

func (s *Server) sendReply(w http.ResponseWriter, reply *ascii.ReplyMessage) {
	resp := ReplyResponse{
		Device:  reply.DeviceAddress,
		Axis:    reply.AxisNumber,
		Flag:    reply.ReplyFlag,
		Status:  reply.DeviceStatus,
		Warning: reply.WarningFlag,
		Data:    reply.Data,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleMove processes incoming HTTP POST requests to move the device to an
// absolute position
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	type MoveRequest struct {
		Axis     int  `json:"axis"`
		Position int  `json:"position"`
		Blocking bool `json:"blocking"`
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	target := mover(s.Device)
	if req.Axis != 0 {
		axis, err := s.Device.Axis(req.Axis)
		if err != nil {
			s.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		target = axis
	}

	reply, err := target.MoveAbs(r.Context(), req.Position, req.Blocking)
	if err != nil {
		s.Logger.Error("Failed to move device", "error", err, "axis", req.Axis, "position", req.Position)
		s.sendError(w, err.Error(), moveStatusCode(err))
		return
	}

	s.Logger.Info("Move accepted", "axis", req.Axis, "position", req.Position, "blocking", req.Blocking)
	s.sendReply(w, reply)
}

// handleCommand passes a raw protocol command through to the device and
// returns the reply fields
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	type CommandRequest struct {
		Axis    int    `json:"axis"`
		Command string `json:"command"`
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Command == "" {
		s.sendError(w, "the 'command' field is required", http.StatusBadRequest)
		return
	}

	reply, err := s.Device.Send(r.Context(), &ascii.Command{
		AxisNumber: req.Axis,
		Data:       req.Command,
	})
	if err != nil {
		s.Logger.Error("Failed to execute command", "error", err, "command", req.Command)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("Command executed", "command", req.Command, "flag", reply.ReplyFlag)
	s.sendReply(w, reply)
}

// handleStatus reports whether the device is busy or idle
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.Device.Status(r.Context())
	if err != nil {
		s.Logger.Error("Failed to query device status", "error", err)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type StatusResponse struct {
		Status string `json:"status"`
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatusResponse{Status: status})
}

// mover is the movement surface shared by Device and Axis.
type mover interface {
	MoveAbs(ctx context.Context, position int, blocking bool) (*ascii.ReplyMessage, error)
}

// moveStatusCode maps a movement failure to an HTTP status. A rejection is
// the device refusing the command, not a gateway fault.
func moveStatusCode(err error) int {
	var rejected *controller.RejectedError
	if errors.As(err, &rejected) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
