package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/wardenauth/warden/pkg/errdefs"
)

func TestStore_CreateGroup(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_groups`)).
		WithArgs("admins", "platform administrators", "level-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("group-1"))

	group := &UserGroup{Name: "admins", Description: "platform administrators", AccessLevelID: "level-1"}
	if err := s.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID != "group-1" {
		t.Errorf("expected id group-1, got %s", group.ID)
	}
}

func TestStore_CreateGroup_UnknownAccessLevel(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_groups`)).
		WillReturnError(&pq.Error{Code: pgForeignKeyViolation})

	group := &UserGroup{Name: "admins", AccessLevelID: "missing"}
	err := s.CreateGroup(context.Background(), group)
	if !errdefs.IsNotFound(err) {
		t.Errorf("expected ErrNotFound for unknown access level, got %v", err)
	}
}

func TestStore_AddGroupMember_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO user_group_members`)).
		WillReturnError(&pq.Error{Code: pgUniqueViolation})

	_, err := s.AddGroupMember(context.Background(), "user-1", "group-1")
	if !errdefs.IsConflict(err) {
		t.Errorf("expected ErrConflict on duplicate membership, got %v", err)
	}
}

func TestStore_RemoveGroupMember_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM user_group_members`)).
		WithArgs("user-1", "group-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.RemoveGroupMember(context.Background(), "user-1", "group-1")
	if !errdefs.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListGroupMembers(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewStore(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM user_group_members`)).
		WithArgs("group-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "group_id", "created_at"}).
			AddRow("m-1", "user-1", "group-1", now).
			AddRow("m-2", "user-2", "group-1", now))

	members, err := s.ListGroupMembers(context.Background(), "group-1")
	if err != nil {
		t.Fatalf("ListGroupMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].UserID != "user-1" || members[1].UserID != "user-2" {
		t.Errorf("unexpected members: %+v", members)
	}
}
