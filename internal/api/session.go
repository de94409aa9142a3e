package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/routing"
	"github.com/hackgods/hospital-portal/internal/session"
	"github.com/hackgods/hospital-portal/internal/view"
)

func (s *server) selectRole(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	nav, err := routing.SelectRole(r.Context(), sc, r.FormValue("role"))
	if err != nil {
		if errors.Is(err, session.ErrInvariant) {
			s.forcedLogout(r.Context(), sc, err)
		} else {
			s.logger.Error("select role failed", zap.Error(err))
		}
	}
	s.redirect(w, r, nav.Path, nav.Alert)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	role := sc.Role()
	nav, err := routing.Logout(r.Context(), sc)
	if err != nil {
		s.logger.Error("logout failed", zap.String("session_id", sc.ID), zap.Error(err))
	}
	s.recorder.Record(r.Context(), activity.Event{
		SessionID: sc.ID, Role: role.String(), Action: activity.ActionLogout, Outcome: activity.OutcomeOK,
	})
	s.redirect(w, r, nav.Path, "")
}

func (s *server) logoutPatient(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	role := sc.Role()
	nav, err := routing.LogoutPatient(r.Context(), sc)
	if err != nil {
		s.logger.Error("patient logout failed", zap.String("session_id", sc.ID), zap.Error(err))
	}
	s.recorder.Record(r.Context(), activity.Event{
		SessionID: sc.ID, Role: role.String(), Action: activity.ActionLogout, Outcome: activity.OutcomeOK,
	})
	s.redirect(w, r, nav.Path, "")
}

// action runs a card or row action posted by the page. Script requests get
// the patch as JSON; plain form posts get a redirect back.
func (s *server) action(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}

	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		if k != "kind" && k != "target" {
			params[k] = r.PostForm.Get(k)
		}
	}
	a := view.ActionFromForm(r.PostForm.Get("kind"), r.PostForm.Get("target"), params)

	patch, err := s.dispatch.Dispatch(r.Context(), sc, a)
	if err != nil && errors.Is(err, session.ErrInvariant) {
		s.forcedLogout(r.Context(), sc, err)
		if cerr := sc.Clear(r.Context()); cerr != nil {
			s.logger.Error("clear session failed", zap.String("session_id", sc.ID), zap.Error(cerr))
		}
		patch.Redirect = routing.PathHome
	} else if err != nil {
		s.logger.Error("action failed", zap.String("kind", string(a.Kind)), zap.Error(err))
	}

	if a.Kind == view.ActionDeleteDoctor {
		outcome := activity.OutcomeRejected
		switch {
		case patch.Remove != "":
			outcome = activity.OutcomeOK
		case err != nil:
			outcome = activity.OutcomeFailed
		}
		s.recorder.Record(r.Context(), activity.Event{
			SessionID: sc.ID,
			Role:      sc.Role().String(),
			Action:    activity.ActionDoctorDelete,
			Subject:   a.Params["doctorId"],
			Outcome:   outcome,
			Detail:    patch.Alert,
		})
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, patch)
		return
	}

	next := patch.Redirect
	if next == "" {
		next = localReferer(r)
	}
	if next == "" {
		next = routing.Dashboard(sc.Role(), sc.Token())
	}
	s.redirect(w, r, next, patch.Alert)
}

// localReferer returns the referring page when it is on this host.
func localReferer(r *http.Request) string {
	u, err := url.Parse(r.Referer())
	if err != nil || u.Path == "" || (u.Host != "" && u.Host != r.Host) {
		return ""
	}
	return u.RequestURI()
}

func formInt(r *http.Request, key string) int64 {
	n, _ := strconv.ParseInt(r.FormValue(key), 10, 64)
	return n
}
