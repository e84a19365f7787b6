package cart

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/MarcGrol/shopcart/lib/mycontext"
	"github.com/MarcGrol/shopcart/lib/myerrors"
	"github.com/MarcGrol/shopcart/lib/myhttp"
	"github.com/MarcGrol/shopcart/lib/mylog"
	"github.com/MarcGrol/shopcart/services/cart/cartevents"
)

type CartResponse struct {
	Items Cart            `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type NotificationsResponse struct {
	Notifications []cartevents.Notified `json:"notifications"`
}

type amountForm struct {
	Amount int `form:"amount"`
}

type webService struct {
	store  *Store
	feed   *Feed
	logger mylog.Logger
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(store *Store, feed *Feed) *webService {
	return &webService{
		store:  store,
		feed:   feed,
		logger: mylog.New("cart"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/cart", s.getCart()).Methods("GET")
	router.HandleFunc("/api/cart/items/{id}", s.addItem()).Methods("POST")
	router.HandleFunc("/api/cart/items/{id}", s.removeItem()).Methods("DELETE")
	router.HandleFunc("/api/cart/items/{id}", s.updateAmount()).Methods("PUT")
	router.HandleFunc("/api/cart/events", s.handleEventEnvelope()).Methods("POST")
	router.HandleFunc("/api/cart/notifications", s.getNotifications()).Methods("GET")

	return s.feed.Subscribe(c)
}

func (s *webService) getCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cart := s.store.Cart(c)

		responseWriter.Write(c, w, http.StatusOK, CartResponse{
			Items: cart,
			Count: cart.Count(),
			Total: cart.Total(),
		})
	}
}

func (s *webService) addItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := parseItemID(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		err = s.store.AddItem(c, id)
		if err != nil {
			s.writeOperationError(c, responseWriter, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: msgItemAdded,
		})
	}
}

func (s *webService) removeItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := parseItemID(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		err = s.store.RemoveItem(c, id)
		if err != nil {
			s.writeOperationError(c, responseWriter, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: msgItemRemoved,
		})
	}
}

func (s *webService) updateAmount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		id, err := parseItemID(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		err = r.ParseForm()
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}
		form := amountForm{}
		err = formcodec.NewDecoder().Decode(&form, r.Form)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err)))
			return
		}

		err = s.store.UpdateAmount(c, UpdateAmountRequest{ID: id, Amount: form.Amount})
		if err != nil {
			s.writeOperationError(c, responseWriter, w, 4, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: msgAmountUpdated,
		})
	}
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := cartevents.DispatchEvent(c, r.Body, s.feed)
		if err != nil {
			responseWriter.WriteError(c, w, 5, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}

func (s *webService) getNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		responseWriter.Write(c, w, http.StatusOK, NotificationsResponse{
			Notifications: s.feed.Recent(),
		})
	}
}

func parseItemID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, myerrors.NewInvalidInputErrorf("invalid item id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

// writeOperationError answers with the notification message instead of the full error chain
func (s *webService) writeOperationError(c context.Context, responseWriter myhttp.ResponseWriter, w http.ResponseWriter, errorCode int, err error) {
	s.logger.Log(c, s.store.key, mylog.SeverityWarn, "Error response: error-code:%d, error-msg:%s", errorCode, err)
	responseWriter.Write(c, w, myerrors.GetHTTPStatus(err), myhttp.ErrorResponse{
		ErrorCode: errorCode,
		Message:   Message(err),
	})
}
