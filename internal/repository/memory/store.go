// Package memory keeps every record in process memory. It backs the
// STORAGE_BACKEND=memory mode and the behavioural tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/savings-ledger/internal/domain"
	"github.com/segyhp/savings-ledger/internal/repository"
)

// Store holds all tables behind one lock. Records are copied on the way in
// and out so callers never share memory with the store.
type Store struct {
	mu       sync.RWMutex
	members  map[uuid.UUID]domain.Member
	meetings map[uuid.UUID]domain.Meeting
	shares   map[uuid.UUID]domain.Share
	loans    map[uuid.UUID]domain.Loan
	payments map[uuid.UUID]domain.LoanPayment
	welfare  map[uuid.UUID]domain.Welfare
	seq      int64
	order    map[uuid.UUID]int64
}

func NewStore() *Store {
	return &Store{
		members:  make(map[uuid.UUID]domain.Member),
		meetings: make(map[uuid.UUID]domain.Meeting),
		shares:   make(map[uuid.UUID]domain.Share),
		loans:    make(map[uuid.UUID]domain.Loan),
		payments: make(map[uuid.UUID]domain.LoanPayment),
		welfare:  make(map[uuid.UUID]domain.Welfare),
		order:    make(map[uuid.UUID]int64),
	}
}

func (s *Store) Members() repository.MemberRepository   { return &memberRepo{s} }
func (s *Store) Meetings() repository.MeetingRepository { return &meetingRepo{s} }
func (s *Store) Shares() repository.ShareRepository     { return &shareRepo{s} }
func (s *Store) Loans() repository.LoanRepository       { return &loanRepo{s} }
func (s *Store) Welfare() repository.WelfareRepository  { return &welfareRepo{s} }

// Ping satisfies readiness checks
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// track remembers insertion order; must be called with the write lock held
func (s *Store) track(id uuid.UUID) {
	s.seq++
	s.order[id] = s.seq
}

func (s *Store) sortByInsertion(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
}

func sameMeeting(ref *uuid.UUID, id uuid.UUID) bool {
	return ref != nil && *ref == id
}

func copyRef(ref *uuid.UUID) *uuid.UUID {
	if ref == nil {
		return nil
	}
	id := *ref
	return &id
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type memberRepo struct{ s *Store }

func (r *memberRepo) Create(ctx context.Context, member *domain.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.members[member.ID] = *member
	r.s.track(member.ID)
	return nil
}

func (r *memberRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.members[id]
	if !ok || m.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (r *memberRepo) List(ctx context.Context, status string) ([]*domain.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	members := []*domain.Member{}
	for _, m := range r.s.members {
		if m.DeletedAt != nil || (status != "" && m.Status != status) {
			continue
		}
		m := m
		members = append(members, &m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (r *memberRepo) Update(ctx context.Context, member *domain.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.members[member.ID]
	if !ok || current.DeletedAt != nil {
		return sql.ErrNoRows
	}
	updated := *member
	updated.CreatedAt = current.CreatedAt
	updated.DeletedAt = nil
	r.s.members[member.ID] = updated
	return nil
}

func (r *memberRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.members[id]
	if !ok || m.DeletedAt != nil {
		return sql.ErrNoRows
	}
	m.DeletedAt = &at
	m.UpdatedAt = at
	r.s.members[id] = m
	return nil
}

type meetingRepo struct{ s *Store }

func (r *meetingRepo) Create(ctx context.Context, meeting *domain.Meeting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.meetings[meeting.ID] = *meeting
	r.s.track(meeting.ID)
	return nil
}

func (r *meetingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.meetings[id]
	if !ok || m.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (r *meetingRepo) List(ctx context.Context, status string) ([]*domain.Meeting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	meetings := []*domain.Meeting{}
	for _, m := range r.s.meetings {
		if m.DeletedAt != nil || (status != "" && m.Status != status) {
			continue
		}
		m := m
		meetings = append(meetings, &m)
	}
	sort.Slice(meetings, func(i, j int) bool { return meetings[i].MeetingDate.After(meetings[j].MeetingDate) })
	return meetings, nil
}

func (r *meetingRepo) Update(ctx context.Context, meeting *domain.Meeting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.meetings[meeting.ID]
	if !ok || current.DeletedAt != nil {
		return sql.ErrNoRows
	}
	updated := *meeting
	updated.MeetingSummary = current.MeetingSummary
	updated.CreatedAt = current.CreatedAt
	updated.DeletedAt = nil
	r.s.meetings[meeting.ID] = updated
	return nil
}

func (r *meetingRepo) UpdateSummary(ctx context.Context, id uuid.UUID, summary domain.MeetingSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.meetings[id]
	if !ok || m.DeletedAt != nil {
		return sql.ErrNoRows
	}
	m.MeetingSummary = summary
	m.UpdatedAt = time.Now()
	r.s.meetings[id] = m
	return nil
}

func (r *meetingRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.meetings[id]
	if !ok || m.DeletedAt != nil {
		return sql.ErrNoRows
	}
	m.DeletedAt = &at
	m.UpdatedAt = at
	r.s.meetings[id] = m
	return nil
}

type shareRepo struct{ s *Store }

func (r *shareRepo) Create(ctx context.Context, share *domain.Share) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *share
	stored.MeetingID = copyRef(share.MeetingID)
	r.s.shares[share.ID] = stored
	r.s.track(share.ID)
	return nil
}

func (r *shareRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Share, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sh, ok := r.s.shares[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	sh.MeetingID = copyRef(sh.MeetingID)
	return &sh, nil
}

func (r *shareRepo) Update(ctx context.Context, share *domain.Share) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.shares[share.ID]
	if !ok {
		return sql.ErrNoRows
	}
	updated := *share
	updated.MeetingID = copyRef(share.MeetingID)
	updated.MemberID = current.MemberID
	updated.CreatedAt = current.CreatedAt
	r.s.shares[share.ID] = updated
	return nil
}

func (r *shareRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shares[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.shares, id)
	return nil
}

func (r *shareRepo) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Share, error) {
	return r.list(func(sh domain.Share) bool { return sameMeeting(sh.MeetingID, meetingID) }), nil
}

func (r *shareRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Share, error) {
	return r.list(func(sh domain.Share) bool { return sh.MemberID == memberID }), nil
}

func (r *shareRepo) list(match func(domain.Share) bool) []*domain.Share {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []uuid.UUID{}
	for id, sh := range r.s.shares {
		if match(sh) {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)

	shares := make([]*domain.Share, 0, len(ids))
	for _, id := range ids {
		sh := r.s.shares[id]
		sh.MeetingID = copyRef(sh.MeetingID)
		shares = append(shares, &sh)
	}
	return shares
}

type loanRepo struct{ s *Store }

func cloneLoan(l domain.Loan) *domain.Loan {
	l.MeetingID = copyRef(l.MeetingID)
	l.DueDate = copyTime(l.DueDate)
	l.DeletedAt = copyTime(l.DeletedAt)
	return &l
}

func (r *loanRepo) Create(ctx context.Context, loan *domain.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.loans[loan.ID] = *cloneLoan(*loan)
	r.s.track(loan.ID)
	return nil
}

func (r *loanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.s.loans[id]
	if !ok || l.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	return cloneLoan(l), nil
}

func (r *loanRepo) Update(ctx context.Context, loan *domain.Loan, previousPaid decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.loans[loan.ID]
	if !ok || current.DeletedAt != nil {
		return sql.ErrNoRows
	}
	if !current.AmountPaid.Equal(previousPaid) {
		return repository.ErrStaleWrite
	}
	updated := cloneLoan(*loan)
	updated.MemberID = current.MemberID
	updated.CreatedAt = current.CreatedAt
	updated.DeletedAt = nil
	r.s.loans[loan.ID] = *updated
	return nil
}

func (r *loanRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.loans[id]
	if !ok || l.DeletedAt != nil {
		return sql.ErrNoRows
	}
	l.DeletedAt = &at
	l.UpdatedAt = at
	r.s.loans[id] = l
	return nil
}

func (r *loanRepo) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Loan, error) {
	return r.list(func(l domain.Loan) bool { return sameMeeting(l.MeetingID, meetingID) }), nil
}

func (r *loanRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	return r.list(func(l domain.Loan) bool { return l.MemberID == memberID }), nil
}

func (r *loanRepo) list(match func(domain.Loan) bool) []*domain.Loan {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []uuid.UUID{}
	for id, l := range r.s.loans {
		if l.DeletedAt == nil && match(l) {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)

	loans := make([]*domain.Loan, 0, len(ids))
	for _, id := range ids {
		loans = append(loans, cloneLoan(r.s.loans[id]))
	}
	return loans
}

func (r *loanRepo) ApplyPayment(ctx context.Context, loan *domain.Loan, previousPaid decimal.Decimal, payment *domain.LoanPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.loans[loan.ID]
	if !ok || current.DeletedAt != nil {
		return repository.ErrStaleWrite
	}
	if !current.AmountPaid.Equal(previousPaid) {
		return repository.ErrStaleWrite
	}

	current.AmountPaid = loan.AmountPaid
	current.Balance = loan.Balance
	current.Status = loan.Status
	current.UpdatedAt = loan.UpdatedAt
	r.s.loans[loan.ID] = current

	stored := *payment
	stored.MeetingID = copyRef(payment.MeetingID)
	r.s.payments[payment.ID] = stored
	r.s.track(payment.ID)
	return nil
}

func (r *loanRepo) ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []uuid.UUID{}
	for id, p := range r.s.payments {
		if p.LoanID == loanID {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)

	payments := make([]*domain.LoanPayment, 0, len(ids))
	for _, id := range ids {
		p := r.s.payments[id]
		p.MeetingID = copyRef(p.MeetingID)
		payments = append(payments, &p)
	}
	return payments, nil
}

type welfareRepo struct{ s *Store }

func (r *welfareRepo) Create(ctx context.Context, welfare *domain.Welfare) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *welfare
	stored.MeetingID = copyRef(welfare.MeetingID)
	r.s.welfare[welfare.ID] = stored
	r.s.track(welfare.ID)
	return nil
}

func (r *welfareRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Welfare, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.welfare[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	w.MeetingID = copyRef(w.MeetingID)
	return &w, nil
}

func (r *welfareRepo) Update(ctx context.Context, welfare *domain.Welfare) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.welfare[welfare.ID]
	if !ok {
		return sql.ErrNoRows
	}
	updated := *welfare
	updated.MeetingID = copyRef(welfare.MeetingID)
	updated.MemberID = current.MemberID
	updated.CumulativeAmount = current.CumulativeAmount
	updated.CreatedAt = current.CreatedAt
	r.s.welfare[welfare.ID] = updated
	return nil
}

func (r *welfareRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.welfare[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.welfare, id)
	return nil
}

func (r *welfareRepo) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*domain.Welfare, error) {
	return r.list(func(w domain.Welfare) bool { return sameMeeting(w.MeetingID, meetingID) }), nil
}

func (r *welfareRepo) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Welfare, error) {
	return r.list(func(w domain.Welfare) bool { return w.MemberID == memberID }), nil
}

func (r *welfareRepo) list(match func(domain.Welfare) bool) []*domain.Welfare {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []uuid.UUID{}
	for id, w := range r.s.welfare {
		if match(w) {
			ids = append(ids, id)
		}
	}
	r.s.sortByInsertion(ids)

	records := make([]*domain.Welfare, 0, len(ids))
	for _, id := range ids {
		w := r.s.welfare[id]
		w.MeetingID = copyRef(w.MeetingID)
		records = append(records, &w)
	}
	return records
}

func (r *welfareRepo) SumContributions(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	total := decimal.Zero
	for _, w := range r.s.welfare {
		if w.MemberID == memberID && w.Type == domain.WelfareTypeContribution {
			total = total.Add(w.Amount)
		}
	}
	return total, nil
}
