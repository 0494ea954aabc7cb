package http

import (
	"fmt"
	"net/http"

	"ledgerbook/internal/core"
	"ledgerbook/internal/log"
)

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req ledgerNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	b, err := s.svc.CreateLedger(r.Context(), owner, sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	Created(b).Header("Location", "/budgets/"+b.ID).Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	list, err := s.svc.ListBudgets(r.Context(), owner)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if list == nil {
		list = []core.Budget{}
	}
	OK(list).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	b, err := s.svc.GetBudget(r.Context(), id)
	if err == nil && b.Owner != owner {
		err = fmt.Errorf("%w: budget %s", core.ErrUnauthorized, id)
	}
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	OK(b).Write(w)
}

func (s *Server) handleRenameBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req ledgerNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpRename, err)
		return
	}
	b, err := s.svc.RenameLedger(r.Context(), r.PathValue("id"), owner, sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, log.OpRename, err)
		return
	}
	OK(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteLedger(r.Context(), r.PathValue("id"), owner); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleAppendTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	b, err := s.svc.AppendTransaction(r.Context(), r.PathValue("id"), owner, req.draft())
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	Created(b).Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpEdit, err)
		return
	}
	b, err := s.svc.EditTransaction(r.Context(), r.PathValue("id"), owner, r.PathValue("txnID"), req.patch())
	if err != nil {
		writeError(w, r, log.OpEdit, err)
		return
	}
	OK(b).Write(w)
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	b, err := s.svc.RemoveTransaction(r.Context(), r.PathValue("id"), owner, r.PathValue("txnID"))
	if err != nil {
		writeError(w, r, log.OpRemove, err)
		return
	}
	OK(b).Write(w)
}

func (s *Server) handleBudgetBlocks(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	blocks, err := s.svc.BudgetBlocks(r.Context(), r.PathValue("id"), owner)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	if blocks == nil {
		blocks = []core.Block{}
	}
	OK(blocks).Write(w)
}
