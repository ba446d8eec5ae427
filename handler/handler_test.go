package handler

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/od-kfujiwara/tosho-kanri-system/config"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/jsonlog"
	"github.com/od-kfujiwara/tosho-kanri-system/repository"
	"github.com/od-kfujiwara/tosho-kanri-system/repository/csvdb"
	"github.com/od-kfujiwara/tosho-kanri-system/service"
)

type testCLI struct {
	handler *Handler
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	today   time.Time
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	var cfg config.Config
	cfg.Data.Dir = t.TempDir()
	cfg.Loan.TermDays = 14
	db, err := csvdb.Open(cfg)
	require.NoError(t, err)
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	cli := &testCLI{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		today:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return cli.today }
	svc := service.New(cfg, logger, repository.New(db), service.WithClock(clock))
	h := New(cfg, logger, svc)
	h.now = clock
	h.stdout = cli.stdout
	h.stderr = cli.stderr
	cli.handler = h
	return cli
}

func (c *testCLI) run(args ...string) int {
	c.stdout.Reset()
	c.stderr.Reset()
	return c.handler.Execute(args)
}

func TestBookAddAndShow(t *testing.T) {
	cli := newTestCLI(t)

	code := cli.run("book", "add",
		"--isbn=978-4-10-100101-3", "--title=雪国", "--author=川端康成",
		"--publisher=新潮社", "--year=1947", "--category=小説", "--copies=2")
	assert.Equal(t, 0, code)
	assert.Equal(t, "書籍を登録しました: 雪国\n", cli.stdout.String())

	code = cli.run("book", "show", "--isbn=9784101001013")
	assert.Equal(t, 0, code)
	out := cli.stdout.String()
	assert.Contains(t, out, "=== 書籍詳細 ===")
	assert.Contains(t, out, "ISBN: 9784101001013")
	assert.Contains(t, out, "状況: 利用可能 (2冊中2冊利用可能)")
}

func TestBookAddMissingParams(t *testing.T) {
	cli := newTestCLI(t)

	code := cli.run("book", "add", "--isbn=9784101001013")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "必要なパラメータが不足しています")
	assert.Empty(t, cli.stdout.String())
}

func TestBookListEmpty(t *testing.T) {
	cli := newTestCLI(t)

	code := cli.run("book", "list")
	assert.Equal(t, 0, code)
	assert.Equal(t, "登録されている書籍がありません\n", cli.stdout.String())
}

func TestBookSearchNoMatchFails(t *testing.T) {
	cli := newTestCLI(t)

	code := cli.run("book", "search", "--title=存在しない")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "を含む書籍が見つかりません")

	code = cli.run("book", "search")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "検索条件を指定してください")
}

func TestUserLifecycle(t *testing.T) {
	cli := newTestCLI(t)

	code := cli.run("user", "add", "--name=山田太郎", "--email=yamada@example.com")
	assert.Equal(t, 0, code)
	assert.Equal(t, "利用者を登録しました: 山田太郎 (ID: U001)\n", cli.stdout.String())

	code = cli.run("user", "edit", "--id=U001", "--name=山田次郎")
	assert.Equal(t, 0, code)
	assert.Equal(t, "利用者を更新しました: 山田次郎 (ID: U001)\n", cli.stdout.String())

	code = cli.run("user", "show", "--id=U001")
	assert.Equal(t, 0, code)
	assert.Contains(t, cli.stdout.String(), "登録日: 2024-05-01")

	code = cli.run("user", "delete", "--id=U001")
	assert.Equal(t, 0, code)
	assert.Equal(t, "利用者を削除しました: 山田次郎 (ID: U001)\n", cli.stdout.String())

	code = cli.run("user", "show", "--id=U001")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "利用者ID U001 が見つかりません")
}

func TestLoanWorkflow(t *testing.T) {
	cli := newTestCLI(t)

	require.Equal(t, 0, cli.run("book", "add",
		"--isbn=9784101001013", "--title=雪国", "--author=川端康成",
		"--publisher=新潮社", "--year=1947", "--category=小説"))
	require.Equal(t, 0, cli.run("user", "add", "--name=山田太郎", "--email=yamada@example.com"))

	code := cli.run("loan", "checkout", "--user-id=U001", "--isbn=9784101001013")
	assert.Equal(t, 0, code)
	assert.Equal(t, "貸出処理が完了しました: 雪国 -> 山田太郎 (貸出ID: L001)\n", cli.stdout.String())

	// Single copy, so a second user cannot borrow it.
	require.Equal(t, 0, cli.run("user", "add", "--name=佐藤花子", "--email=sato@example.com"))
	code = cli.run("loan", "checkout", "--user-id=U002", "--isbn=9784101001013")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "この書籍は現在貸出中で利用できません")

	code = cli.run("loan", "list")
	assert.Equal(t, 0, code)
	out := cli.stdout.String()
	assert.Contains(t, out, "=== 貸出中書籍一覧 ===")
	assert.Contains(t, out, "書籍: 雪国 (9784101001013)")
	assert.Contains(t, out, "返却予定日: 2024-05-15")
	assert.Contains(t, out, "状態: 貸出中")

	code = cli.run("loan", "return", "--loan-id=L001")
	assert.Equal(t, 0, code)
	assert.Equal(t, "返却処理が完了しました: 雪国\n", cli.stdout.String())

	code = cli.run("loan", "return", "--loan-id=L001")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "この貸出は既に返却済みです")

	code = cli.run("loan", "list")
	assert.Equal(t, 0, code)
	assert.Equal(t, "現在貸出中の書籍がありません\n", cli.stdout.String())
}

func TestLoanOverdueDisplay(t *testing.T) {
	cli := newTestCLI(t)

	require.Equal(t, 0, cli.run("book", "add",
		"--isbn=9784101001013", "--title=雪国", "--author=川端康成",
		"--publisher=新潮社", "--year=1947", "--category=小説"))
	require.Equal(t, 0, cli.run("user", "add", "--name=山田太郎", "--email=yamada@example.com"))
	require.Equal(t, 0, cli.run("loan", "checkout", "--user-id=U001", "--isbn=9784101001013"))

	// Due 2024-05-15; three days later the loan shows as overdue.
	cli.today = time.Date(2024, 5, 18, 9, 0, 0, 0, time.UTC)

	code := cli.run("loan", "overdue")
	assert.Equal(t, 0, code)
	out := cli.stdout.String()
	assert.Contains(t, out, "=== 延滞書籍一覧 ===")
	assert.Contains(t, out, "状態: 貸出中 (延滞3日)")
}

func TestLoanSummaryCommand(t *testing.T) {
	cli := newTestCLI(t)

	require.Equal(t, 0, cli.run("book", "add",
		"--isbn=9784101001013", "--title=雪国", "--author=川端康成",
		"--publisher=新潮社", "--year=1947", "--category=小説"))
	require.Equal(t, 0, cli.run("user", "add", "--name=山田太郎", "--email=yamada@example.com"))
	require.Equal(t, 0, cli.run("loan", "checkout", "--user-id=U001", "--isbn=9784101001013"))

	code := cli.run("loan", "summary")
	assert.Equal(t, 0, code)
	out := cli.stdout.String()
	assert.Contains(t, out, "=== 貸出状況サマリー ===")
	assert.Contains(t, out, "総貸出件数: 1")
	assert.Contains(t, out, "貸出中: 1")
	assert.Contains(t, out, "返却済: 0")
}

func TestLoanHistoryByUserAndBook(t *testing.T) {
	cli := newTestCLI(t)

	require.Equal(t, 0, cli.run("book", "add",
		"--isbn=9784101001013", "--title=雪国", "--author=川端康成",
		"--publisher=新潮社", "--year=1947", "--category=小説"))
	require.Equal(t, 0, cli.run("user", "add", "--name=山田太郎", "--email=yamada@example.com"))
	require.Equal(t, 0, cli.run("loan", "checkout", "--user-id=U001", "--isbn=9784101001013"))
	require.Equal(t, 0, cli.run("loan", "return", "--loan-id=L001"))

	code := cli.run("loan", "history", "--user-id=U001")
	assert.Equal(t, 0, code)
	assert.Contains(t, cli.stdout.String(), "=== 山田太郎 の貸出履歴 ===")
	assert.Contains(t, cli.stdout.String(), "状態: 返却済")

	code = cli.run("loan", "history", "--isbn=9784101001013")
	assert.Equal(t, 0, code)
	assert.Contains(t, cli.stdout.String(), "=== 雪国 の貸出履歴 ===")

	code = cli.run("loan", "history")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "利用者IDまたはISBNを指定してください")
}

func TestBookDeleteWhileLoanedFails(t *testing.T) {
	cli := newTestCLI(t)

	require.Equal(t, 0, cli.run("book", "add",
		"--isbn=9784101001013", "--title=雪国", "--author=川端康成",
		"--publisher=新潮社", "--year=1947", "--category=小説"))
	require.Equal(t, 0, cli.run("user", "add", "--name=山田太郎", "--email=yamada@example.com"))
	require.Equal(t, 0, cli.run("loan", "checkout", "--user-id=U001", "--isbn=9784101001013"))

	code := cli.run("book", "delete", "--isbn=9784101001013")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "貸出中の書籍は削除できません")

	require.Equal(t, 0, cli.run("loan", "return", "--loan-id=L001"))
	code = cli.run("book", "delete", "--isbn=9784101001013")
	assert.Equal(t, 0, code)
	assert.Equal(t, "書籍を削除しました: 雪国\n", cli.stdout.String())
}

func TestValidationErrorsAreJapanese(t *testing.T) {
	cli := newTestCLI(t)

	code := cli.run("book", "add",
		"--isbn=12345", "--title=雪国", "--author=川端康成",
		"--publisher=新潮社", "--year=abc", "--category=小説")
	assert.Equal(t, 1, code)
	assert.Contains(t, cli.stderr.String(), "ISBNは13桁の数字で入力してください")
	assert.Contains(t, cli.stderr.String(), "有効な出版年を入力してください")
}
