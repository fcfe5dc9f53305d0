package main

import (
	"fmt"
	"net/http"

	"github.com/vitalvas/servlet/container"
	"github.com/vitalvas/servlet/descriptor"
)

// Servlet kinds selected with the "kind" init parameter.
const (
	kindReport       = "report"
	kindText         = "text"
	kindInclude      = "include"
	kindForward      = "forward"
	kindNamedInclude = "named-include"
	kindNamedForward = "named-forward"
)

// newServlet is the descriptor.HandlerFactory of the serve command. The
// dispatching kinds take their target from the "target" parameter.
func newServlet(_ string, s descriptor.Servlet) (http.Handler, error) {
	kind := s.Params["kind"]
	if kind == "" {
		kind = kindReport
	}

	switch kind {
	case kindReport:
		return container.MappingReportHandler(), nil

	case kindText:
		body := s.Params["body"]
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, body)
		}), nil

	case kindInclude, kindForward, kindNamedInclude, kindNamedForward:
		target := s.Params["target"]
		if target == "" {
			return nil, fmt.Errorf("%s servlet needs a target parameter", kind)
		}
		return dispatchingServlet(kind, target), nil

	default:
		return nil, fmt.Errorf("unknown servlet kind %q", kind)
	}
}

func dispatchingServlet(kind, target string) http.Handler {
	var rd *container.RequestDispatcher
	switch kind {
	case kindNamedInclude, kindNamedForward:
		rd = container.NamedDispatcher(target)
	default:
		rd = container.PathDispatcher(target)
	}
	forward := kind == kindForward || kind == kindNamedForward

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		if forward {
			err = rd.Forward(w, r)
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			err = rd.Include(w, r)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
