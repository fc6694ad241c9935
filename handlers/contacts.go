package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/contacts/datastores"
)

type Contacts struct {
	Store        ds.ContactsStore
	ErrorHandler func(context.Context, error)
}

type ContactModel struct {
	ID    string `json:"id"    readOnly:"true" format:"uuid" example:"4f1c9a52-8a0e-4c43-9d1f-0b7f3c3e2a11"`
	Name  string `json:"name"  example:"Alice"`
	Email string `json:"email" example:"alice@example.com"`
}

func contactModel(c *ds.Contact) ContactModel {
	return ContactModel{ID: c.ID.String(), Name: c.Name, Email: c.Email}
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
	)
}

type ContactsListOutput struct {
	Body []ContactModel
}

func (h *Contacts) list(ctx context.Context, _ *struct{}) (*ContactsListOutput, error) {
	contacts, err := h.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	body := make([]ContactModel, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, contactModel(contact))
	}

	return &ContactsListOutput{Body: body}, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type ContactsGetOutput struct {
	Body ContactModel
}

func (h *Contacts) get(ctx context.Context, input *struct {
	ID string `path:"id" doc:"ID of the contact to get"`
}) (*ContactsGetOutput, error) {
	id, err := ds.ParseContactID(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("id not found", err)
	}

	contact, err := h.Store.Get(ctx, id)
	switch {
	case err == nil:
		return &ContactsGetOutput{Body: contactModel(contact)}, nil

	case errors.Is(err, ds.ErrObjectNotFound):
		return nil, huma.Error404NotFound("id not found", err)

	default:
		return nil, err
	}
}

func (h *Contacts) RegisterCreate(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/",
		handlerWithErrorHandler(h.create, h.ErrorHandler),
		opErrors(http.StatusUnprocessableEntity, http.StatusInternalServerError),
		func(o *huma.Operation) { o.DefaultStatus = http.StatusCreated },
	)
}

type ContactsCreateInput struct {
	Body struct {
		Name  string `json:"name"  minLength:"1" maxLength:"200" pattern:"\\S" example:"Alice"`
		Email string `json:"email" minLength:"1" maxLength:"320" pattern:"\\S" example:"alice@example.com"`
	}
}

type ContactsCreateOutput struct {
	Body ContactModel
}

func (h *Contacts) create(ctx context.Context, input *ContactsCreateInput) (*ContactsCreateOutput, error) {
	contact, err := h.Store.Create(ctx, input.Body.Name, input.Body.Email)
	if err != nil {
		return nil, err
	}

	return &ContactsCreateOutput{Body: contactModel(contact)}, nil
}
