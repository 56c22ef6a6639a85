package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/app"
	"github.com/MPfria02/Library-Management-System-sub001/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	uc := controllers.GetUserController(s)
	bookCtl := controllers.NewBookController(s)
	borrowCtl := controllers.NewBorrowController(s)
	inviteCtl := controllers.GetInviteController(s)
	auditCtl := controllers.NewAuditController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.Sess, a.Store, a.Config)
	adminMW := app.AdminOnly(a.Config, a.Store)
	seenMW := app.TouchLastSeen(a.Store, a.RDB, 5*time.Minute)
	secureCookie := strings.HasPrefix(a.Config.WebOrigin, "https://")

	// ------------------------------
	// WebAuthn（公开+受保护）
	// ------------------------------
	wa := r.Group("/webauthn")
	{
		// 公开：注册/登录流程
		wa.POST("/register/begin", s.BeginRegistration)
		wa.POST("/register/finish", s.FinishRegistration)

		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
	}

	waAuth := wa.Group("", authMW, seenMW)
	{
		waAuth.GET("/whoami", s.WhoAmI)

		// 登出
		waAuth.POST("/logout", func(c *app.Ctx) {
			if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
				_ = a.Sess.Delete(c.Request.Context(), ck.Value)
			}
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     app.AppSessionCookie,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   secureCookie,
			})
			c.JSON(http.StatusOK, app.H{"ok": true})
		})
	}

	// ------------------------------
	// 密码兜底（同样走邀请注册）
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/register", s.PasswordRegister)
		auth.POST("/login", s.PasswordLogin)
	}

	// 已登录用户添加新凭据（绑定手机等）
	creds := r.Group("/api/credentials", authMW, seenMW)
	{
		creds.POST("/add/begin", s.BeginAddCredential)
		creds.POST("/add/finish", s.FinishAddCredential)
	}

	// ------------------------------
	// 自己的资料
	// ------------------------------
	me := r.Group("/api/me", authMW, seenMW)
	{
		me.GET("", uc.Me)
		me.PUT("", uc.UpdateMe)
	}

	// ------------------------------
	// 书目 + 自助借还（登录即可）
	// ------------------------------
	books := r.Group("/api/books", authMW, seenMW)
	{
		books.GET("", bookCtl.ListBooks) // ?q=&available=1&page=&size=
		books.GET("/:id", bookCtl.GetBook)
		books.POST("/:id/borrow", borrowCtl.Borrow)
		books.POST("/:id/return", borrowCtl.Return)
	}

	borrows := r.Group("/api/borrows", authMW, seenMW)
	{
		borrows.GET("/mine", borrowCtl.MyBorrows) // ?status=open|returned
	}

	// ------------------------------
	// 书目管理（仅管理员）
	// ------------------------------
	booksAdmin := r.Group("/api/books", authMW, adminMW)
	{
		booksAdmin.POST("", bookCtl.CreateBook)
		booksAdmin.PUT("/:id", bookCtl.UpdateBook)
		booksAdmin.PATCH("/:id/copies", bookCtl.ResizeCopies)
		booksAdmin.DELETE("/:id", bookCtl.DeleteBook)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", uc.ListUsers)   // ?q=&page=&size=
		users.GET("/:id", uc.GetUser) // 含在借清单
		users.PUT("/:id/role", uc.SetRole)
	}

	// ------------------------------
	// 流通台 / 邀请 / 审计（仅管理员）
	// ------------------------------
	admin := r.Group("/admin", authMW, adminMW)
	{
		admin.GET("/circulation", borrowCtl.AdminListBorrows) // ?userId=&bookId=&status=
		admin.POST("/circulation/borrow", borrowCtl.AdminBorrow)
		admin.POST("/circulation/return", borrowCtl.AdminReturn)

		admin.POST("/invites", inviteCtl.CreateInvite)
		admin.GET("/invites", inviteCtl.ListInvites)

		admin.GET("/audit", auditCtl.ListAudit)
	}
}
