package database

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps subjects and classes as top-level collections and the
// per-class records as sub-collections of the class document.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) collection(path Path) *firestore.CollectionRef {
	if path.Parent == "" {
		return s.client.Collection(path.Collection)
	}
	return s.client.Collection(ClassesCollection).Doc(path.Parent).Collection(path.Collection)
}

func (s *FirestoreStore) Add(ctx context.Context, path Path, fields Fields) (string, error) {
	ref, _, err := s.collection(path).Add(ctx, map[string]interface{}(fields))
	if err != nil {
		return "", classifyFirestoreWrite("add", path.String(), err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) List(ctx context.Context, path Path) ([]Document, error) {
	iter := s.collection(path).Documents(ctx)
	defer iter.Stop()

	docs := make([]Document, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, Unavailable("list", path.String(), err)
		}
		docs = append(docs, Document{ID: doc.Ref.ID, Fields: Fields(doc.Data())})
	}
	return docs, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func classifyFirestoreWrite(op, target string, err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange,
		codes.PermissionDenied, codes.AlreadyExists:
		return Rejected(op, target, err)
	default:
		return Unavailable(op, target, err)
	}
}
