package handler

import (
	"fmt"

	"coursebot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	btnBackToMainMenu        = "⬅️ Back to Main Menu"
	btnBackToUniversities    = "⬅️ Back to Universities"
	btnBackToSpecializations = "⬅️ Back to Specializations"
	btnBackToSemesters       = "⬅️ Back to Semesters"
	btnBackToModules         = "⬅️ Back to Modules"
	btnBackToResourceTypes   = "⬅️ Back to Resource Types"
)

// branch builds navigation actions for one side of the catalog
type branch struct {
	specialization bool
}

func (b branch) at(scope, semester string, module int, resource string) domain.NavAction {
	if b.specialization {
		return domain.SpecializationPath{Specialization: scope, Semester: semester, Module: module, Resource: resource}
	}
	return domain.UniversityPath{University: scope, Semester: semester, Module: module, Resource: resource}
}

func (b branch) scopes(nav *domain.Navigation) []domain.Scope {
	if b.specialization {
		return nav.Specializations
	}
	return nav.Universities
}

func (b branch) find(nav *domain.Navigation, key string) (*domain.Scope, bool) {
	if b.specialization {
		return nav.FindSpecialization(key)
	}
	return nav.FindUniversity(key)
}

func (b branch) top() domain.View {
	if b.specialization {
		return domain.ViewSpecializations
	}
	return domain.ViewUniversities
}

// button encodes a into an inline button. Buttons that cannot be encoded are dropped.
func (h *Handler) button(text string, a domain.NavAction) (tele.Btn, bool) {
	data, err := EncodeAction(a)
	if err != nil {
		h.logger.Warn("Skipping inline button", zap.String("text", text), zap.Error(err))
		return tele.Btn{}, false
	}
	return tele.Btn{Text: text, Data: data}, true
}

// keyboard lays buttons out two per row with an optional back row
func (h *Handler) keyboard(buttons []tele.Btn, back *tele.Btn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for i := 0; i < len(buttons); i += 2 {
		if i+1 < len(buttons) {
			rows = append(rows, markup.Row(buttons[i], buttons[i+1]))
		} else {
			rows = append(rows, markup.Row(buttons[i]))
		}
	}
	if back != nil {
		rows = append(rows, markup.Row(*back))
	}
	markup.Inline(rows...)
	return markup
}

func (h *Handler) backButton(text string, a domain.NavAction) *tele.Btn {
	btn, ok := h.button(text, a)
	if !ok {
		return nil
	}
	return &btn
}

func (h *Handler) mainMenu() (string, *tele.ReplyMarkup) {
	var buttons []tele.Btn
	if btn, ok := h.button("📚 Tronc commun", domain.PathChoice{Path: domain.PathTroncCommun}); ok {
		buttons = append(buttons, btn)
	}
	if btn, ok := h.button("🎯 Spécialité", domain.PathChoice{Path: domain.PathSpecialite}); ok {
		buttons = append(buttons, btn)
	}
	return msgWelcome, h.keyboard(buttons, nil)
}

func (h *Handler) scopeList(b branch) (string, *tele.ReplyMarkup) {
	nav := h.navigator.Navigation()

	var buttons []tele.Btn
	for _, scope := range b.scopes(nav) {
		if btn, ok := h.button(scope.Name, b.at(scope.Key, "", -1, "")); ok {
			buttons = append(buttons, btn)
		}
	}

	text := msgTroncCommun
	if b.specialization {
		text = msgSpecialite
	}
	if len(buttons) == 0 {
		text = msgNothingHere
	}
	return text, h.keyboard(buttons, h.backButton(btnBackToMainMenu, domain.BackAction{Target: domain.ViewMainMenu}))
}

func (h *Handler) semesterList(b branch, scope *domain.Scope) (string, *tele.ReplyMarkup) {
	var buttons []tele.Btn
	for _, sem := range scope.Semesters {
		if btn, ok := h.button(sem.Name, b.at(scope.Key, sem.Key, -1, "")); ok {
			buttons = append(buttons, btn)
		}
	}

	backText := btnBackToUniversities
	format := msgScopeSemesters
	if b.specialization {
		backText = btnBackToSpecializations
		format = msgSpecSemesters
	}
	return fmt.Sprintf(format, scope.Name), h.keyboard(buttons, h.backButton(backText, domain.BackAction{Target: b.top()}))
}

func (h *Handler) moduleList(b branch, scope *domain.Scope, sem *domain.Semester) (string, *tele.ReplyMarkup) {
	var buttons []tele.Btn
	for i, module := range sem.Modules {
		if btn, ok := h.button(module, b.at(scope.Key, sem.Key, i, "")); ok {
			buttons = append(buttons, btn)
		}
	}
	back := h.backButton(btnBackToSemesters, b.at(scope.Key, "", -1, ""))
	return fmt.Sprintf(msgSemesterModules, sem.Name), h.keyboard(buttons, back)
}

func (h *Handler) resourceList(b branch, scope *domain.Scope, sem *domain.Semester, module int) (string, *tele.ReplyMarkup) {
	name, _ := sem.Module(module)

	var buttons []tele.Btn
	for _, rt := range domain.ResourceTypes {
		if btn, ok := h.button(rt.Emoji+" "+rt.Label, b.at(scope.Key, sem.Key, module, rt.Key)); ok {
			buttons = append(buttons, btn)
		}
	}
	back := h.backButton(btnBackToModules, b.at(scope.Key, sem.Key, -1, ""))
	return fmt.Sprintf(msgModuleResources, name), h.keyboard(buttons, back)
}

func (h *Handler) fileList(b branch, scope *domain.Scope, sem *domain.Semester, module int, resource string) (string, *tele.ReplyMarkup) {
	name, _ := sem.Module(module)
	rt, ok := domain.FindResourceType(resource)
	if !ok {
		rt = domain.ResourceType{Key: resource, Label: resource, Emoji: "📁"}
	}
	back := h.backButton(btnBackToResourceTypes, b.at(scope.Key, sem.Key, module, ""))

	files := h.resolver.ResolveFiles(scope.Key, sem.Key, name, resource)
	if len(files) == 0 {
		return fmt.Sprintf(msgNoFiles, rt.Emoji, rt.Label, name), h.keyboard(nil, back)
	}

	// one file per row, names can be long
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, f := range files {
		btn, ok := h.button("📄 "+f.Name, domain.FileSelection{
			Specialization: b.specialization,
			Scope:          scope.Key,
			Semester:       sem.Key,
			Module:         module,
			Resource:       resource,
			File:           f.Key(),
		})
		if ok {
			rows = append(rows, markup.Row(btn))
		}
	}
	if back != nil {
		rows = append(rows, markup.Row(*back))
	}
	markup.Inline(rows...)
	return fmt.Sprintf(msgFilesAvailable, rt.Emoji, rt.Label, name), markup
}

// renderPath renders the menu a path action points at. Unknown keys fall back
// to the nearest valid level.
func (h *Handler) renderPath(b branch, scopeKey, semKey string, module int, resource string) (string, *tele.ReplyMarkup) {
	nav := h.navigator.Navigation()

	scope, ok := b.find(nav, scopeKey)
	if !ok {
		return h.scopeList(b)
	}
	if semKey == "" {
		return h.semesterList(b, scope)
	}
	sem, ok := scope.FindSemester(semKey)
	if !ok {
		return h.semesterList(b, scope)
	}
	if _, ok := sem.Module(module); !ok {
		return h.moduleList(b, scope, sem)
	}
	if resource == "" {
		return h.resourceList(b, scope, sem, module)
	}
	return h.fileList(b, scope, sem, module, resource)
}

// renderSession renders the menu for a session's current view
func (h *Handler) renderSession(sess domain.Session) (string, *tele.ReplyMarkup) {
	switch sess.View {
	case domain.ViewUniversities, domain.ViewUniversityPaths:
		return h.scopeList(branch{})
	case domain.ViewSpecializations:
		return h.scopeList(branch{specialization: true})
	case domain.ViewSemesters, domain.ViewModules, domain.ViewResources:
		return h.renderPath(branch{}, sess.University, sess.Semester, sess.Module, "")
	case domain.ViewSpecSemesters, domain.ViewSpecModules, domain.ViewSpecResources:
		return h.renderPath(branch{specialization: true}, sess.Specialization, sess.Semester, sess.Module, "")
	default:
		return h.mainMenu()
	}
}
