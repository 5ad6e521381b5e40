package form

import "github.com/gin-gonic/gin"

// LoginForm 登录
type LoginForm struct {
	Username string `form:"username" binding:"required,notblank"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
	Errors   Errors `form:"-"`
}

func NewLoginForm() *LoginForm { return &LoginForm{Errors: Errors{}} }

func (f *LoginForm) Bind(c *gin.Context) bool {
	f.Errors = Errors{}
	if err := c.ShouldBind(f); err != nil {
		f.Errors.collect(err)
	}
	return f.Errors.Empty()
}

// SignupForm 注册
type SignupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150,username"`
	Email     string `form:"email" binding:"omitempty,email"`
	Password  string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password"`
	Errors    Errors `form:"-"`
}

func NewSignupForm() *SignupForm { return &SignupForm{Errors: Errors{}} }

func (f *SignupForm) Bind(c *gin.Context) bool {
	f.Errors = Errors{}
	if err := c.ShouldBind(f); err != nil {
		f.Errors.collect(err)
	}
	return f.Errors.Empty()
}
