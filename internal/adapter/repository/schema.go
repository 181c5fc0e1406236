package repository

import (
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vendora/pkg/errors"
)

const (
	usersCollection           = "users"
	productsCollection        = "products"
	cartsCollection           = "carts"
	guestCartsCollection      = "guestCarts"
	ordersCollection          = "orders"
	ticketsCollection         = "supportTickets"
	supportSessionsCollection = "supportSessions"
	notificationsCollection   = "notifications"
)

var schema = validator.New(validator.WithRequiredStructEnabled())

// validateDocument checks doc against its struct tags before it is written.
func validateDocument(kind string, doc interface{}) error {
	err := schema.Struct(doc)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return errors.Validation(fmt.Sprintf("invalid %s: %s failed %s", kind, fe.Namespace(), fe.Tag()))
	}
	return errors.Internal(fmt.Sprintf("Failed to validate %s", kind), err)
}

func readError(resource string, err error) error {
	if status.Code(err) == codes.NotFound {
		return errors.NotFound(resource, err)
	}
	return errors.Internal(fmt.Sprintf("Failed to get %s", resource), err)
}

func writeError(action string, err error) error {
	if status.Code(err) == codes.NotFound {
		return errors.NotFound("Document", err)
	}
	return errors.Internal("Failed to "+action, err)
}

func applyLimit(q firestore.Query, limit int) firestore.Query {
	if limit > 0 {
		return q.Limit(limit)
	}
	return q
}
