// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/authz"
	"github.com/dalemusser/propertyflow/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in page titles and the header.
const SiteName = "PropertyFlow"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// Auth context (from the session middleware)
	IsLoggedIn  bool
	IsAdmin     bool
	Role        string
	UserName    string
	UserEmail   string
	CompanyName string
	CompanyCode string

	// Sidebar entries the user is allowed to see
	Nav []navigation.Item

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string
}

// NewBaseVM creates a BaseVM for the page at r.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Role:        "visitor",
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if s, ok := auth.CurrentSession(r); ok {
		vm.IsLoggedIn = true
		vm.IsAdmin = authz.IsAdmin(r)
		vm.Role = string(s.User.Role)
		vm.UserName = s.User.Name
		vm.UserEmail = s.User.Email
		vm.CompanyName = s.Company.Name
		vm.CompanyCode = s.Company.CompanyCode
		vm.Nav = navigation.Menu(s.User, vm.CurrentPath)
	}
	return vm
}
