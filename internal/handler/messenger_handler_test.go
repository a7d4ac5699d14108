package handler

import (
	"net/http"
	"strconv"
	"testing"

	"tsound-server/internal/model"
)

type chatBody struct {
	ID      string `json:"id"`
	User1ID string `json:"user1_id"`
	User2ID string `json:"user2_id"`
}

func TestMessengerChatAndMessages(t *testing.T) {
	env := newTestEnv(t)

	// 数字与字符串形式的ID得到同一个会话
	w := env.do(t, http.MethodPost, "/api/v1/messenger?action=chat", map[string]interface{}{"user1_id": 7, "user2_id": "3"}, nil)
	mustStatus(t, w, http.StatusOK)
	var first chatBody
	decode(t, w, &first)

	w = env.do(t, http.MethodPost, "/api/v1/messenger?action=chat", map[string]interface{}{"user1_id": "3", "user2_id": 7}, nil)
	mustStatus(t, w, http.StatusOK)
	var second chatBody
	decode(t, w, &second)
	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("expected symmetric chat ids, got %q and %q", first.ID, second.ID)
	}

	for _, content := range []string{"hello", "world"} {
		w = env.do(t, http.MethodPost, "/api/v1/messenger?action=send", map[string]interface{}{
			"chat_id": first.ID, "sender_id": 3, "content": content,
		}, nil)
		mustStatus(t, w, http.StatusCreated)
	}

	w = env.do(t, http.MethodGet, "/api/v1/messenger?action=messages&chat_id="+first.ID, nil, nil)
	mustStatus(t, w, http.StatusOK)
	var messages []struct {
		ID        string  `json:"id"`
		SenderID  string  `json:"sender_id"`
		Content   string  `json:"content"`
		IsRead    bool    `json:"is_read"`
		PhotoURL  *string `json:"photo_url"`
		CreatedAt string  `json:"created_at"`
	}
	decode(t, w, &messages)
	if len(messages) != 2 || messages[0].Content != "hello" || messages[1].Content != "world" {
		t.Fatalf("unexpected messages: %+v", messages)
	}
	if messages[0].SenderID != "3" || messages[0].IsRead || messages[0].CreatedAt == "" {
		t.Fatalf("unexpected message fields: %+v", messages[0])
	}

	w = env.do(t, http.MethodGet, "/api/v1/messenger?action=messages&chat_id=empty", nil, nil)
	mustStatus(t, w, http.StatusOK)
	if w.Body.String() != "[]" {
		t.Fatalf("expected [], got %s", w.Body.String())
	}
}

func TestMessengerValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		method  string
		target  string
		body    interface{}
		status  int
		message string
	}{
		{"messages without chat", http.MethodGet, "/api/v1/messenger?action=messages", nil, http.StatusBadRequest, "chat_id is required"},
		{"send without sender", http.MethodPost, "/api/v1/messenger?action=send", map[string]string{"chat_id": "c"}, http.StatusBadRequest, "chat_id and sender_id required"},
		{"chat without peer", http.MethodPost, "/api/v1/messenger?action=chat", map[string]string{"user1_id": "1"}, http.StatusBadRequest, "user1_id and user2_id required"},
		{"update without user", http.MethodPost, "/api/v1/messenger?action=update_user", map[string]string{}, http.StatusBadRequest, "user_id required"},
		{"update unknown user", http.MethodPost, "/api/v1/messenger?action=update_user", map[string]interface{}{"user_id": 404}, http.StatusNotFound, "User not found"},
		{"unknown action", http.MethodGet, "/api/v1/messenger?action=nope", nil, http.StatusBadRequest, "Invalid action"},
		{"wrong method", http.MethodPut, "/api/v1/messenger?action=send", nil, http.StatusBadRequest, "Invalid action"},
		{"missing action", http.MethodPost, "/api/v1/messenger", nil, http.StatusBadRequest, "Invalid action"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, tc.method, tc.target, tc.body, nil)
			mustError(t, w, tc.status, tc.message)
		})
	}
}

func TestMessengerOnlineAndUpdateUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/online", map[string]string{"sessionId": "anon-1"}, nil)
	mustStatus(t, w, http.StatusOK)

	var user model.User
	if err := env.db.Where("session_id = ?", "anon-1").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}

	w = env.do(t, http.MethodGet, "/api/v1/messenger?action=online", nil, nil)
	mustStatus(t, w, http.StatusOK)
	var online []struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Status   string `json:"status"`
	}
	decode(t, w, &online)
	if len(online) != 1 || online[0].Username != "User_"+strconv.FormatUint(uint64(user.ID), 10) {
		t.Fatalf("unexpected online list: %+v", online)
	}

	w = env.do(t, http.MethodPost, "/api/v1/messenger?action=update_user", map[string]interface{}{
		"user_id": user.ID, "username": "dana",
	}, nil)
	mustStatus(t, w, http.StatusOK)
	var updated struct {
		ID        uint    `json:"id"`
		Username  *string `json:"username"`
		AvatarURL *string `json:"avatar_url"`
		Status    string  `json:"status"`
	}
	decode(t, w, &updated)
	if updated.Username == nil || *updated.Username != "dana" || updated.AvatarURL != nil {
		t.Fatalf("unexpected updated user: %+v", updated)
	}
	if updated.Status != model.StatusOffline {
		t.Fatalf("status must stay unchanged when omitted, got %s", updated.Status)
	}
}
