package layout

// Hard-coded default layouts for the core slots the seeder guarantees at
// startup. Structural nodes use the built-in component set; leaf widgets
// (Logo, UserMenu, StatsCards, ...) resolve against whatever registry the
// host application supplies and degrade to empty anchors otherwise.

// CoreSlots lists the slots the seeder keeps populated.
func CoreSlots() []Slot {
	return []Slot{
		{Type: KindTopNav, Scope: ScopeSite},
		{Type: KindFooter, Scope: ScopeSite},
		{Type: KindUserMenu, Scope: ScopeSite},
		{Type: KindDashboard, Scope: ScopeAdmin},
		{Type: KindSidebar, Scope: ScopeAdmin},
	}
}

// DefaultForSlot returns the default layout for a known slot.
func DefaultForSlot(slot Slot) (Layout, bool) {
	switch slot {
	case Slot{Type: KindTopNav, Scope: ScopeSite}:
		return DefaultTopNav(), true
	case Slot{Type: KindFooter, Scope: ScopeSite}:
		return DefaultFooter(), true
	case Slot{Type: KindUserMenu, Scope: ScopeSite}:
		return DefaultUserMenu(), true
	case Slot{Type: KindDashboard, Scope: ScopeAdmin}:
		return DefaultDashboard(), true
	case Slot{Type: KindSidebar, Scope: ScopeAdmin}:
		return DefaultSidebar(), true
	}
	return Layout{}, false
}

// DefaultTopNav is the site-wide top navigation bar.
func DefaultTopNav() Layout {
	return Layout{
		Name:    "Main TopNav",
		Type:    KindTopNav,
		Scope:   ScopeSite,
		Version: DefaultVersion,
		Components: []ComponentNode{
			{
				ID:   "main-topnav-root",
				Type: "nav",
				Children: []ComponentNode{
					{
						ID:    "main-topnav-row",
						Type:  "container",
						Props: map[string]interface{}{"direction": "row"},
						Children: []ComponentNode{
							{ID: "main-topnav-logo", Type: "Logo"},
							{ID: "main-topnav-navigation", Type: "NavigationItems"},
							{
								ID:    "main-topnav-actions",
								Type:  "container",
								Props: map[string]interface{}{"direction": "row"},
								Children: []ComponentNode{
									{ID: "main-topnav-search", Type: "SearchButton"},
									{ID: "main-topnav-auth", Type: "AuthSection"},
								},
							},
						},
					},
				},
			},
		},
	}
}

// DefaultFooter is the site-wide footer.
func DefaultFooter() Layout {
	return Layout{
		Name:    "Main Footer",
		Type:    KindFooter,
		Scope:   ScopeSite,
		Version: DefaultVersion,
		Components: []ComponentNode{
			{
				ID:   "main-footer-root",
				Type: "footer",
				Children: []ComponentNode{
					{
						ID:    "main-footer-content",
						Type:  "grid",
						Props: map[string]interface{}{"cols": 3},
						Children: []ComponentNode{
							{
								ID:   "main-footer-branding",
								Type: "container",
								Children: []ComponentNode{
									{ID: "main-footer-logo", Type: "Logo", Props: map[string]interface{}{"size": "sm"}},
									{
										ID:    "main-footer-tagline",
										Type:  "text",
										Props: map[string]interface{}{"content": "A hub for passionate makers building and customizing 3D printers."},
									},
								},
							},
							{
								ID:   "main-footer-links",
								Type: "container",
								Children: []ComponentNode{
									{ID: "main-footer-links-title", Type: "heading", Props: map[string]interface{}{"level": 3, "content": "Quick Links"}},
									{
										ID:   "main-footer-links-list",
										Type: "list",
										Children: []ComponentNode{
											{ID: "main-footer-link-builds", Type: "link", Props: map[string]interface{}{"href": "/builds", "content": "Browse Builds"}},
											{ID: "main-footer-link-parts", Type: "link", Props: map[string]interface{}{"href": "/parts", "content": "Parts Library"}},
											{ID: "main-footer-link-community", Type: "link", Props: map[string]interface{}{"href": "/community", "content": "Community"}},
										},
									},
								},
							},
							{
								ID:   "main-footer-social",
								Type: "container",
								Children: []ComponentNode{
									{ID: "main-footer-social-title", Type: "heading", Props: map[string]interface{}{"level": 3, "content": "Connect With Us"}},
									{ID: "main-footer-social-links", Type: "SocialLinks"},
								},
							},
						},
					},
					{
						ID:    "main-footer-copyright",
						Type:  "text",
						Props: map[string]interface{}{"content": "MakersImpulse. All rights reserved."},
					},
				},
			},
		},
	}
}

// DefaultUserMenu is the authenticated user dropdown region.
func DefaultUserMenu() Layout {
	return Layout{
		Name:    "User Menu",
		Type:    KindUserMenu,
		Scope:   ScopeSite,
		Version: DefaultVersion,
		Components: []ComponentNode{
			{
				ID:    "usermenu-root",
				Type:  "container",
				Props: map[string]interface{}{"direction": "row"},
				Children: []ComponentNode{
					{ID: "usermenu-component", Type: "UserMenu"},
				},
			},
		},
	}
}

// DefaultDashboard is the admin landing page.
func DefaultDashboard() Layout {
	return Layout{
		Name:    "Default Dashboard",
		Type:    KindDashboard,
		Scope:   ScopeAdmin,
		Version: DefaultVersion,
		Components: []ComponentNode{
			{
				ID:   "dashboard-root",
				Type: "container",
				Children: []ComponentNode{
					{
						ID:   "dashboard-title-card",
						Type: "card",
						Children: []ComponentNode{
							{ID: "dashboard-title", Type: "heading", Props: map[string]interface{}{"level": 1, "content": "Admin Dashboard"}},
						},
					},
					{ID: "dashboard-shortcuts", Type: "DashboardShortcuts"},
					{
						ID:    "dashboard-stats-grid",
						Type:  "grid",
						Props: map[string]interface{}{"cols": 4},
						Children: []ComponentNode{
							{ID: "dashboard-stats", Type: "StatsCards"},
						},
					},
					{
						ID:    "dashboard-main-grid",
						Type:  "grid",
						Props: map[string]interface{}{"cols": 3},
						Children: []ComponentNode{
							{
								ID:          "dashboard-active-users",
								Type:        "ActiveUsersList",
								Permissions: []string{"admin:users:view"},
							},
							{
								ID:          "dashboard-performance",
								Type:        "PerformanceMetrics",
								Permissions: []string{"admin:metrics:view"},
							},
						},
					},
					{ID: "dashboard-trending", Type: "TrendingParts"},
				},
			},
		},
	}
}

// DefaultSidebar is the admin navigation rail.
func DefaultSidebar() Layout {
	return Layout{
		Name:    "Admin Sidebar",
		Type:    KindSidebar,
		Scope:   ScopeAdmin,
		Version: DefaultVersion,
		Components: []ComponentNode{
			{
				ID:   "sidebar-root",
				Type: "container",
				Children: []ComponentNode{
					{ID: "sidebar-heading", Type: "heading", Props: map[string]interface{}{"level": 2, "content": "Administration"}},
					{
						ID:   "sidebar-nav",
						Type: "list",
						Children: []ComponentNode{
							{ID: "sidebar-link-overview", Type: "link", Props: map[string]interface{}{"href": "/admin", "content": "Overview"}},
							{
								ID:          "sidebar-link-content",
								Type:        "link",
								Props:       map[string]interface{}{"href": "/admin/content", "content": "Content"},
								Permissions: []string{"admin:content:view"},
							},
							{
								ID:          "sidebar-link-layouts",
								Type:        "link",
								Props:       map[string]interface{}{"href": "/admin/layouts", "content": "Layouts"},
								Permissions: []string{"admin:layouts:view"},
							},
							{
								ID:          "sidebar-link-users",
								Type:        "link",
								Props:       map[string]interface{}{"href": "/admin/users", "content": "Users"},
								Permissions: []string{"admin:users:view"},
							},
						},
					},
				},
			},
		},
	}
}
