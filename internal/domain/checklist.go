package domain

// Check is the name of one boolean compliance check.
type Check string

// The organisational checklist, in reporting order.
const (
	CheckDefaultBranchMain           Check = "default_branch_main"
	CheckDefaultBranchProtection     Check = "has_default_branch_protection"
	CheckRequiresApprovingReviews    Check = "requires_approving_reviews"
	CheckAdministratorsRequireReview Check = "administrators_require_review"
	CheckIssuesSectionEnabled        Check = "issues_section_enabled"
	CheckRequireApprovalsEnabled     Check = "has_require_approvals_enabled"
	CheckHasLicense                  Check = "has_license"
	CheckHasDescription              Check = "has_description"
)

// ChecklistItem pairs a check with the reason shown when it fails.
type ChecklistItem struct {
	Check  Check
	Reason string
}

// Checklist is the fixed list of checks every repository is held to.
var Checklist = []ChecklistItem{
	{CheckDefaultBranchMain, "The default branch is not `main`"},
	{CheckDefaultBranchProtection, "Branch protection is not enabled on the `main` branch"},
	{CheckRequiresApprovingReviews, "Pull request require reviews is not enabled"},
	{CheckAdministratorsRequireReview, "Administrator pull requests require a review is not enabled"},
	{CheckIssuesSectionEnabled, "The issues section is not enabled"},
	{CheckRequireApprovalsEnabled, "The number of pull request approvers is not enabled (`Require approvals`)"},
	{CheckHasLicense, "License is not present/approved"},
	{CheckHasDescription, "Description section is empty"},
}

// FailureReasons lists the reason for every failing check in checklist
// order. A check missing from the report counts as failing.
func (r RepositoryReport) FailureReasons() []string {
	reasons := make([]string, 0, len(Checklist))
	for _, item := range Checklist {
		if !r.Checks[string(item.Check)] {
			reasons = append(reasons, item.Reason)
		}
	}
	return reasons
}
